package wearsync

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/alardizabal/ud851-Sunshine/logger"
)

type recordingListener struct {
	batches [][]DataEvent
}

func (r *recordingListener) OnDataChanged(events []DataEvent) {
	r.batches = append(r.batches, events)
}

func TestDeliverRequiresConnection(t *testing.T) {
	c := NewChannel(logger.NewNop())
	l := &recordingListener{}
	c.AddListener(l)

	err := c.Deliver([]DataEvent{{Item: DataItem{Path: "/weather"}}})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Deliver() error = %v, want ErrNotConnected", err)
	}
	if len(l.batches) != 0 {
		t.Fatalf("listener called while disconnected")
	}

	c.Connect()
	if err := c.Deliver([]DataEvent{{Item: DataItem{Path: "/weather"}}}); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(l.batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(l.batches))
	}
	ev := l.batches[0][0]
	if ev.Item.ID == "" {
		t.Error("item ID not assigned")
	}
	if ev.Type != EventChanged {
		t.Errorf("event type = %q, want changed", ev.Type)
	}

	c.Disconnect()
	if c.IsConnected() {
		t.Error("still connected after Disconnect")
	}
}

func TestRemoveListener(t *testing.T) {
	c := NewChannel(logger.NewNop())
	a, b := &recordingListener{}, &recordingListener{}
	c.AddListener(a)
	c.AddListener(b)
	c.RemoveListener(a)
	c.Connect()

	if err := c.Deliver([]DataEvent{{Item: DataItem{Path: "/weather"}}}); err != nil {
		t.Fatal(err)
	}
	if len(a.batches) != 0 || len(b.batches) != 1 {
		t.Fatalf("a=%d b=%d batches", len(a.batches), len(b.batches))
	}
}

func TestDataMapGetters(t *testing.T) {
	var m DataMap
	if err := json.Unmarshal([]byte(`{"highTemp":"25°","weatherId":511,"frac":1.5,"str":"511"}`), &m); err != nil {
		t.Fatal(err)
	}

	if s, ok := m.GetString("highTemp"); !ok || s != "25°" {
		t.Errorf("GetString(highTemp) = %q, %v", s, ok)
	}
	if _, ok := m.GetString("weatherId"); ok {
		t.Error("GetString on number should fail")
	}
	if n, ok := m.GetInt("weatherId"); !ok || n != 511 {
		t.Errorf("GetInt(weatherId) = %d, %v", n, ok)
	}
	if _, ok := m.GetInt("frac"); ok {
		t.Error("GetInt on fractional number should fail")
	}
	if _, ok := m.GetInt("str"); ok {
		t.Error("GetInt on string should fail")
	}
	if _, ok := m.GetInt("missing"); ok {
		t.Error("GetInt on missing key should fail")
	}

	if n, ok := (DataMap{"weatherId": json.Number("-5")}).GetInt("weatherId"); !ok || n != -5 {
		t.Errorf("GetInt(json.Number) = %d, %v", n, ok)
	}
}

func TestGetIntSameBoundForEveryDecoding(t *testing.T) {
	tests := []struct {
		name  string
		value any
		ok    bool
	}{
		{"float64 max", float64(2147483647), true},
		{"number max", json.Number("2147483647"), true},
		{"int64 max", int64(2147483647), true},
		{"float64 over", float64(2147483648), false},
		{"number over", json.Number("2147483648"), false},
		{"int64 over", int64(2147483648), false},
		{"float64 under", float64(-2147483649), false},
		{"number under", json.Number("-2147483649"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := DataMap{"weatherId": tt.value}.GetInt("weatherId")
			if ok != tt.ok {
				t.Errorf("GetInt(%v) ok = %v, want %v", tt.value, ok, tt.ok)
			}
		})
	}
}

func TestDeliverLeavesCallerBatchUntouched(t *testing.T) {
	c := NewChannel(logger.NewNop())
	l := &recordingListener{}
	c.AddListener(l)
	c.Connect()

	batch := []DataEvent{{Item: DataItem{Path: "/weather"}}}
	if err := c.Deliver(batch); err != nil {
		t.Fatal(err)
	}
	if batch[0].Item.ID != "" || batch[0].Type != "" {
		t.Errorf("caller batch modified: %+v", batch[0])
	}
	if got := l.batches[0][0]; got.Item.ID == "" || got.Type != EventChanged {
		t.Errorf("delivered event = %+v", got)
	}

	if err := c.Deliver(batch); err != nil {
		t.Fatal(err)
	}
	if l.batches[0][0].Item.ID == l.batches[1][0].Item.ID {
		t.Error("reused batch should get a fresh item ID per delivery")
	}
}
