package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestFaceStream(t *testing.T) {
	tf := newTestFace(t)
	tf.face.TickNow()
	tf.settle()

	srv := httptest.NewServer(tf.mux)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/face-stream", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() wsEnvelope {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var env struct {
			Type string      `json:"type"`
			Data FrameNotice `json:"data"`
		}
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read: %v", err)
		}
		if env.Data.ETag == "" {
			t.Fatalf("notice without etag: %+v", env)
		}
		return wsEnvelope{Type: env.Type, Data: env.Data}
	}

	initial := read()
	if initial.Type != "frame" {
		t.Fatalf("type = %q", initial.Type)
	}
	if got := initial.Data.(FrameNotice).Time; got != "9:05" {
		t.Errorf("time = %q, want 9:05", got)
	}

	tf.face.OnTimeTick()
	if next := read(); next.Type != "frame" {
		t.Fatalf("type = %q", next.Type)
	}
}
