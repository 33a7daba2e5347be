// Package cache is the process-wide TTL response cache owned by the
// serving layer. The sync core only ever invalidates it.
package cache

import (
	"sync"
	"time"
)

// Well-known response keys. Invalidation is coarse: a write anywhere
// drops the whole cached listing.
const (
	KeyEventsAll = "events:all"
	KeyClubsAll  = "clubs:all"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL-expiring key-value store for rendered responses.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

// New creates a Cache with the given default TTL. A non-positive TTL
// falls back to two minutes.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Get returns the cached value for key, or nil on a miss. Expired
// entries are cleaned up and treated as misses.
func (c *Cache) Get(key string) any {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil
	}
	return e.value
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops one key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll drops every key. The orchestrator calls this after each
// sync run so stale listings are never served past a successful sync.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
