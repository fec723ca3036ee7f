// Package wearsync carries data items from the paired handheld to the face.
package wearsync

import (
	"errors"
	"sync"

	"github.com/alardizabal/ud851-Sunshine/logger"
	"github.com/google/uuid"
)

var ErrNotConnected = errors.New("sync channel not connected")

type EventType string

const (
	EventChanged EventType = "changed"
	EventDeleted EventType = "deleted"
)

// DataItem is addressed by Path, e.g. "/weather".
type DataItem struct {
	ID   string  `json:"id"`
	Path string  `json:"path"`
	Data DataMap `json:"data"`
}

type DataEvent struct {
	Type EventType `json:"type"`
	Item DataItem  `json:"item"`
}

// DataListener receives batches of data events while the channel is connected.
type DataListener interface {
	OnDataChanged(events []DataEvent)
}

// Channel is the face's handle on the sync connection. It is owned by the
// engine and passed to whatever needs to push or observe data.
type Channel struct {
	nodeID string
	log    *logger.Logger

	mutex     sync.Mutex
	connected bool
	listeners []DataListener
}

func NewChannel(log *logger.Logger) *Channel {
	return &Channel{
		nodeID: uuid.NewString(),
		log:    log,
	}
}

func (c *Channel) NodeID() string {
	return c.nodeID
}

func (c *Channel) Connect() {
	c.mutex.Lock()
	already := c.connected
	c.connected = true
	c.mutex.Unlock()

	if !already {
		c.log.Infow("sync_connected", "node", c.nodeID)
	}
}

func (c *Channel) Disconnect() {
	c.mutex.Lock()
	was := c.connected
	c.connected = false
	c.mutex.Unlock()

	if was {
		c.log.Infow("sync_disconnected", "node", c.nodeID)
	}
}

func (c *Channel) IsConnected() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.connected
}

func (c *Channel) AddListener(l DataListener) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Channel) RemoveListener(l DataListener) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for i, existing := range c.listeners {
		if existing == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Deliver hands events to every listener. Items without an ID get one in
// the delivered copy; events itself is left untouched.
func (c *Channel) Deliver(events []DataEvent) error {
	c.mutex.Lock()
	if !c.connected {
		c.mutex.Unlock()
		c.log.Warnw("sync_delivery_dropped", "node", c.nodeID, "events", len(events))
		return ErrNotConnected
	}
	listeners := make([]DataListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mutex.Unlock()

	// stamp a copy, callers may reuse their batch
	stamped := make([]DataEvent, len(events))
	copy(stamped, events)
	for i := range stamped {
		if stamped[i].Item.ID == "" {
			stamped[i].Item.ID = uuid.NewString()
		}
		if stamped[i].Type == "" {
			stamped[i].Type = EventChanged
		}
	}

	c.log.Debugw("sync_delivery", "node", c.nodeID, "events", len(stamped), "listeners", len(listeners))
	for _, l := range listeners {
		l.OnDataChanged(stamped)
	}
	return nil
}
