package dbmlgen

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Cache stores encoded rows between requests. Implementations may wrap
// Redis, Memcached or process memory.
type Cache interface {
	// Get returns nil, nil when the key is missing or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// CacheKey identifies one cached row.
type CacheKey struct {
	Table string
	ID    any
}

// String returns the key as "<table>:<id>".
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%v", k.Table, k.ID)
}

// MemoryCache is a Cache held in process memory.
type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   []byte
	expires time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{now: time.Now, entries: make(map[string]cacheEntry)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.value, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := cacheEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
