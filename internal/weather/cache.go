package weather

import (
	"sync"
	"time"
)

type cacheEntry struct {
	snapshot  WeatherSnapshot
	expiresAt time.Time
}

// snapshotCache keeps the last live snapshot per location for a fixed TTL.
// A non-positive TTL disables caching.
type snapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *snapshotCache) get(key string) (WeatherSnapshot, bool) {
	if c.ttl <= 0 {
		return WeatherSnapshot{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return WeatherSnapshot{}, false
	}
	return e.snapshot, true
}

func (c *snapshotCache) put(key string, snapshot WeatherSnapshot) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop expired entries on write so the map stays bounded by tracked locations.
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{snapshot: snapshot, expiresAt: now.Add(c.ttl)}
}
