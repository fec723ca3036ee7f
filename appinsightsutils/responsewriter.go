package appinsightsutils

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

// ResponseWriterWithStatusCode is a wrapper around http.ResponseWriter that captures the status code
type ResponseWriterWithStatusCode struct {
	http.ResponseWriter
	statusCode int
}

func NewResponseWriterWithStatusCode(w http.ResponseWriter) *ResponseWriterWithStatusCode {
	return &ResponseWriterWithStatusCode{w, http.StatusOK}
}

func (w *ResponseWriterWithStatusCode) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriterWithStatusCode) StatusCode() int {
	return w.statusCode
}

// Hijack lets websocket upgrades pass through the wrapper.
func (w *ResponseWriterWithStatusCode) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (w *ResponseWriterWithStatusCode) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
