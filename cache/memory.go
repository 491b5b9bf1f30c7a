package cache

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value    string
	storedAt time.Time
}

// InMemoryCache is a thread-safe in-memory cache with TTL support.
type InMemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// MemoryOption configures an InMemoryCache.
type MemoryOption func(*InMemoryCache)

// WithMaxEntries bounds the cache size. When full, the oldest entry is evicted.
func WithMaxEntries(n int) MemoryOption {
	return func(c *InMemoryCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithMemoryClock overrides the time source used for expiry.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *InMemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewInMemoryCache creates a new in-memory cache. A ttl of 0 or less means
// entries never expire.
func NewInMemoryCache(ttl time.Duration, opts ...MemoryOption) *InMemoryCache {
	if ttl < 0 {
		ttl = 0
	}
	c := &InMemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value and true if found and not expired.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if c.expired(entry) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the key.
		if current, still := c.entries[key]; still && c.expired(current) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}

	c.entries[key] = cacheEntry{
		value:    value,
		storedAt: c.now(),
	}
	return nil
}

// Delete removes key from the cache.
func (c *InMemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryCache) expired(entry cacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl
}

// evictLocked drops expired entries, or the oldest one if none expired.
// Must be called with the write lock held.
func (c *InMemoryCache) evictLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		removed   bool
	)
	for key, entry := range c.entries {
		if c.expired(entry) {
			delete(c.entries, key)
			removed = true
			continue
		}
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = key, entry.storedAt
		}
	}
	if !removed && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Verify InMemoryCache implements TranslationCache
var _ TranslationCache = (*InMemoryCache)(nil)
