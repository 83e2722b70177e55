package recommend

import (
	"sync"
	"time"

	"cropwatch/internal/types"
)

// Cache fronts recommendation reads keyed by field ID. Implementations own
// their staleness policy; Get must not return expired entries.
type Cache interface {
	Get(fieldID string) (*types.FieldRecommendation, bool)
	Put(fieldID string, rec *types.FieldRecommendation)
	Invalidate(fieldID string)
}

// memoryCache is a TTL-checked in-memory Cache.
type memoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	rec      *types.FieldRecommendation
	storedAt time.Time
}

// NewMemoryCache creates an in-memory Cache whose entries expire after ttl.
// A non-positive ttl disables expiry.
func NewMemoryCache(ttl time.Duration) Cache {
	return newMemoryCache(ttl, time.Now)
}

func newMemoryCache(ttl time.Duration, now func() time.Time) *memoryCache {
	return &memoryCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *memoryCache) Get(fieldID string) (*types.FieldRecommendation, bool) {
	c.mu.RLock()
	entry, ok := c.entries[fieldID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		c.Invalidate(fieldID)
		return nil, false
	}
	return entry.rec, true
}

func (c *memoryCache) Put(fieldID string, rec *types.FieldRecommendation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fieldID] = cacheEntry{rec: rec, storedAt: c.now()}
}

func (c *memoryCache) Invalidate(fieldID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fieldID)
}
