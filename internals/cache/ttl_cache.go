// Package cache provides a small process-local key/value cache with per-key
// expiry, an injectable clock and an optional size bound.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests swap it for a fake.
type Clock func() time.Time

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a thread-safe cache where every key expires ttl after it was Set.
// When MaxEntries is reached the oldest entry is evicted.
type TTL[K comparable, V any] struct {
	mu         sync.RWMutex
	data       map[K]entry[V]
	ttl        time.Duration
	maxEntries int
	now        Clock
	// gen naik setiap Invalidate/InvalidateAll
	gen uint64
}

// New creates a cache. maxEntries <= 0 means unbounded.
func New[K comparable, V any](ttl time.Duration, maxEntries int, clock Clock) *TTL[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTL[K, V]{
		data:       make(map[K]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        clock,
	}
}

// Get returns the value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || c.expired(e) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetStale returns the value for key even when it has expired.
// Used to answer with old data when the source is down.
func (c *TTL[K, V]) GetStale(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	return e.value, ok
}

// Set stores value under key and restarts its expiry.
func (c *TTL[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *TTL[K, V]) setLocked(key K, value V) {
	if _, exists := c.data[key]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.evictLocked()
	}
	c.data[key] = entry[V]{value: value, storedAt: c.now()}
}

// Generation returns the invalidation counter. Read it before loading from the
// source and hand it to SetIfGeneration.
func (c *TTL[K, V]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// SetIfGeneration stores value only when no invalidation happened since gen was read.
// A load that started before a write must not put its old result back.
func (c *TTL[K, V]) SetIfGeneration(key K, value V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.setLocked(key, value)
	return true
}

// Invalidate drops a single key.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.gen++
}

// InvalidateAll drops every key.
func (c *TTL[K, V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[K]entry[V])
	c.gen++
}

// Len returns the number of stored entries, expired ones included.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *TTL[K, V]) expired(e entry[V]) bool {
	return c.now().Sub(e.storedAt) >= c.ttl
}

// evictLocked removes expired entries first, then the oldest one if still full.
// MUST be called with the write lock held.
func (c *TTL[K, V]) evictLocked() {
	for k, e := range c.data {
		if c.expired(e) {
			delete(c.data, k)
		}
	}
	if len(c.data) < c.maxEntries {
		return
	}

	var (
		oldestKey K
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.data {
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.storedAt, true
		}
	}
	if found {
		delete(c.data, oldestKey)
	}
}
