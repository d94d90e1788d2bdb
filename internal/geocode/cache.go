package geocode

import (
	"context"
	"sync"
	"time"

	"carpool/internal/service"
)

// MemoryCache is an in-process geocode cache with per-entry expiry.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	v       service.GeocodeEntry
	expires time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[string]cacheEntry), now: time.Now}
}

// Get returns the cached entry, or nil if absent or expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*service.GeocodeEntry, error) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return nil, nil
	}
	v := e.v
	return &v, nil
}

// Set stores an entry for ttl.
func (c *MemoryCache) Set(_ context.Context, key string, entry service.GeocodeEntry, ttl time.Duration) error {
	c.mu.Lock()
	c.store[key] = cacheEntry{v: entry, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

var _ service.GeocodeCache = (*MemoryCache)(nil)
