package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/alardizabal/ud851-Sunshine/appinsightsutils"
	"github.com/alardizabal/ud851-Sunshine/data"
	"github.com/alardizabal/ud851-Sunshine/logger"
	"github.com/alardizabal/ud851-Sunshine/scheduler"
	"github.com/alardizabal/ud851-Sunshine/wearsync"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
)

type testFace struct {
	face  *watchFace
	clock *fakeclock.FakeClock
	mux   http.Handler
}

func newTestFace(t *testing.T) *testFace {
	t.Helper()

	clk := fakeclock.NewFakeClock(time.Date(2017, 1, 30, 9, 5, 0, 0, time.UTC))
	log := logger.NewNop()
	telemetry := appinsights.NewTelemetryClient("")
	telemetry.SetIsEnabled(false)

	store := data.NewWeatherStore(clk, log)
	surface := NewSurface(clk, faceOptions{Width: 160, Height: 160}, store, true, time.UTC, log)
	sched := scheduler.New(clk, time.Second, time.Minute, surface.Redraw, log)
	channel := wearsync.NewChannel(log)
	face := newWatchFace(sched, channel, store, surface, telemetry, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		face.Destroy()
	})

	mux := appinsightsutils.NewServeMuxWithTrace(telemetry)
	registerHandlers(mux, NewApiRouter(telemetry, face, clk, log))

	return &testFace{face: face, clock: clk, mux: mux}
}

// settle waits until every signal sent so far has been handled.
func (tf *testFace) settle() {
	tf.face.scheduler.State()
}

func (tf *testFace) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	tf.mux.ServeHTTP(rec, req)
	return rec
}
