package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12
)

type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

var upgrader = websocket.Upgrader{
	// the face is viewed from devices on the local network
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FaceStream pushes a notice for every rendered frame, starting with the
// current one.
func (api *ApiRouter) FaceStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		api.log.Warnw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go api.drainReader(conn, done)

	notices, unsubscribe := api.face.surface.Subscribe()
	defer unsubscribe()

	if frame := api.face.surface.Current(); frame != nil {
		if err := writeNotice(conn, FrameNotice{
			ETag:        frame.ETag,
			Time:        frame.Data.TimeString(),
			Icon:        frame.Data.Icon,
			GeneratedAt: frame.Data.GeneratedAt,
		}); err != nil {
			api.log.Infow("ws_write_failed_initial", "err", err)
			return
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				api.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case notice := <-notices:
			if err := writeNotice(conn, notice); err != nil {
				api.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

func writeNotice(conn *websocket.Conn, notice FrameNotice) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "frame", Data: notice})
}

// drainReader handles control frames and closes done when the peer goes away.
func (api *ApiRouter) drainReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			api.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}
