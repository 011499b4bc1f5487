// Package cache provides an expiring key/value store that keeps expired values
// around so callers can serve them while a refresh is in flight.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached value together with the instant it stops being fresh.
type Entry[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Config configures a Timed cache.
type Config struct {
	TTL   time.Duration
	Clock func() time.Time
}

// Generation identifies the invalidation state of one key. A value computed under an
// older generation must not be written back; see WriteAt.
type Generation struct {
	epoch uint64
	key   uint64
}

// Timed is a concurrency-safe expiring cache. Expired entries are retained until they are
// overwritten or invalidated, so ReadStale can still return them.
type Timed[K comparable, V any] struct {
	mu          sync.RWMutex
	entries     map[K]Entry[V]
	epoch       uint64
	generations map[K]uint64
	ttl         time.Duration
	clock       func() time.Time
}

// NewTimed constructs a Timed cache. A non-positive TTL disables caching entirely.
func NewTimed[K comparable, V any](cfg Config) *Timed[K, V] {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Timed[K, V]{
		entries:     make(map[K]Entry[V]),
		generations: make(map[K]uint64),
		ttl:         cfg.TTL,
		clock:       clock,
	}
}

// Enabled reports whether writes are retained at all.
func (c *Timed[K, V]) Enabled() bool {
	return c.ttl > 0
}

// TTL returns the configured time to live.
func (c *Timed[K, V]) TTL() time.Duration {
	return c.ttl
}

// ReadFresh returns the value for key only while it has not expired.
func (c *Timed[K, V]) ReadFresh(key K) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.clock().Before(entry.ExpiresAt) {
		var zero V
		return zero, false
	}
	return entry.Value, true
}

// ReadStale returns the value for key regardless of expiry.
func (c *Timed[K, V]) ReadStale(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return entry.Value, true
}

// Write stores value under key until now+TTL.
func (c *Timed[K, V]) Write(key K, value V) {
	if !c.Enabled() {
		return
	}
	expiresAt := c.clock().Add(c.ttl)
	c.mu.Lock()
	c.entries[key] = Entry[V]{Value: value, ExpiresAt: expiresAt}
	c.mu.Unlock()
}

// Generation returns the current generation of key. Capture it before computing a value
// and pass it to WriteAt.
func (c *Timed[K, V]) Generation(key K) Generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Generation{epoch: c.epoch, key: c.generations[key]}
}

// WriteAt stores value only if key has not been invalidated since generation was taken.
// It reports whether the value was stored.
func (c *Timed[K, V]) WriteAt(key K, value V, generation Generation) bool {
	if !c.Enabled() {
		return false
	}
	expiresAt := c.clock().Add(c.ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation.epoch != c.epoch || generation.key != c.generations[key] {
		return false
	}
	c.entries[key] = Entry[V]{Value: value, ExpiresAt: expiresAt}
	return true
}

// Invalidate removes the entry for key and advances its generation.
func (c *Timed[K, V]) Invalidate(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.generations[key]++
	c.mu.Unlock()
}

// InvalidateAll removes every entry and advances every generation.
func (c *Timed[K, V]) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[K]Entry[V])
	c.generations = make(map[K]uint64)
	c.epoch++
	c.mu.Unlock()
}

// Len returns the number of retained entries, fresh or stale.
func (c *Timed[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
