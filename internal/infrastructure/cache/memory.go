package cache

import (
	"context"
	"sync"
	"time"

	"github.com/quickcompare/backend/internal/domain"
)

// defaultMaxEntries bounds the cache when no explicit limit is configured.
const defaultMaxEntries = 1024

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	value      interface{}
	storedAt   time.Time
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support and a
// max-entries bound: when full, the oldest entry is evicted rather than
// letting the map grow without limit.
type MemoryCache struct {
	data       map[string]cacheItem
	maxEntries int
	mutex      sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache. maxEntries <= 0 selects
// the default bound.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	cache := &MemoryCache{
		data:       make(map[string]cacheItem),
		maxEntries: maxEntries,
	}

	// Remove expired entries in the background every 10 minutes.
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.value, nil
}

// Set stores a value in the cache with TTL, evicting the oldest entry
// first if the cache is full.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; !exists && len(c.data) >= c.maxEntries {
		c.evictOldestLocked()
	}

	now := time.Now()
	c.data[key] = cacheItem{
		value:      value,
		storedAt:   now,
		expiration: now.Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}

	if time.Now().After(item.expiration) {
		return false, nil
	}

	return true, nil
}

// evictOldestLocked removes the entry stored longest ago. Caller must hold
// the write lock.
func (c *MemoryCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time

	for key, item := range c.data {
		if oldestKey == "" || item.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = item.storedAt
		}
	}

	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
