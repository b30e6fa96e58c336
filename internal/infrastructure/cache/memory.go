package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/logparts/backend/internal/domain"
)

// DefaultSize is used when the configured cache size is not positive
const DefaultSize = 1024

// MemoryCache is a bounded, thread-safe response cache. Entries expire after a
// fixed TTL and the least recently used entry is evicted when full.
type MemoryCache struct {
	lru *expirable.LRU[string, interface{}]
}

// NewMemoryCache creates a cache holding at most size entries for ttl each.
// A zero ttl keeps entries until they are evicted.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, interface{}](size, nil, ttl),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	value, ok := c.lru.Get(key)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

// Set stores a value in the cache
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}) error {
	c.lru.Add(key, value)
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Size returns the current number of entries
func (c *MemoryCache) Size() int {
	return c.lru.Len()
}

// Clear removes all entries
func (c *MemoryCache) Clear() {
	c.lru.Purge()
}
