// Package cache provides translation-result caches.
//
// Values are opaque strings; the translator stores JSON-encoded results.
package cache

import (
	"fmt"
	"time"
)

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached result. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a result in the cache.
	Set(key string, value string) error
}

// Backend names accepted by Open.
const (
	KindNone   = "none"
	KindMemory = "memory"
	KindRedis  = "redis"
)

// DefaultKeyPrefix namespaces Redis keys.
const DefaultKeyPrefix = "culturo:"

// Config selects and configures a cache backend.
type Config struct {
	Kind       string
	TTL        time.Duration
	MaxEntries int // memory only, 0 = unbounded
	RedisURL   string
	KeyPrefix  string
}

// Open builds the backend named by cfg.Kind. It returns a nil cache for
// KindNone or an empty kind.
func Open(cfg Config) (TranslationCache, error) {
	switch cfg.Kind {
	case "", KindNone:
		return nil, nil
	case KindMemory:
		return NewInMemoryCache(cfg.TTL, WithMaxEntries(cfg.MaxEntries)), nil
	case KindRedis:
		return NewRedisCache(RedisConfig{
			URL:       cfg.RedisURL,
			TTL:       cfg.TTL,
			KeyPrefix: cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown cache kind %q", cfg.Kind)
	}
}
