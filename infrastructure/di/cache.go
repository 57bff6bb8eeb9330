package di

import (
	"context"
	"sync"
	"time"
)

// queryCache is a process-local cache for catalog queries (templates and
// schemas). Those results never change after startup, so the TTL exists
// only to bound memory if the key space ever grows.
type queryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value   interface{}
	expires time.Time
}

// NewQueryCache creates the in-memory query cache and starts its sweeper.
func NewQueryCache() *queryCache {
	c := &queryCache{entries: make(map[string]cacheEntry)}
	go c.sweep(time.Minute)
	return c
}

func (c *queryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value with a TTL in seconds.
func (c *queryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		value:   value,
		expires: time.Now().Add(time.Duration(ttl) * time.Second),
	}
	c.mu.Unlock()
	return nil
}

func (c *queryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *queryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
	return nil
}

func (c *queryCache) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.entries {
			if now.After(entry.expires) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
