package data

import (
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
)

type CacheItem[T any] struct {
	Value     *T
	ExpiresAt time.Time
}

// Cache is a TTL map. Reads extend the TTL of the item they hit.
type Cache[K comparable, V any] struct {
	clock clock.Clock
	items map[K]*CacheItem[V]
	ttl   time.Duration
	mutex sync.Mutex
}

func NewCache[K comparable, V any](clk clock.Clock, ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		clock: clk,
		items: make(map[K]*CacheItem[V]),
		ttl:   ttl,
	}
}

// Get returns the value for key, or nil when missing or expired.
func (c *Cache[K, V]) Get(key K) *V {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, found := c.items[key]
	if !found {
		return nil
	}
	now := c.clock.Now().UTC()
	if now.After(item.ExpiresAt) {
		delete(c.items, key)
		return nil
	}
	item.ExpiresAt = now.Add(c.ttl)
	return item.Value
}

// Set stores value and drops anything that has already expired.
func (c *Cache[K, V]) Set(key K, value *V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.clock.Now().UTC()
	for k, item := range c.items {
		if now.After(item.ExpiresAt) {
			delete(c.items, k)
		}
	}
	c.items[key] = &CacheItem[V]{
		Value:     value,
		ExpiresAt: now.Add(c.ttl),
	}
}

func (c *Cache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}
