package cache

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Backend names reported by NewCacheWithInfo.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig holds configuration for cache creation.
type CacheConfig struct {
	// Type is the cache backend type: "memory" or "redis"
	Type string

	// RedisURL is the Redis connection URL (only for redis type)
	// Example: redis://localhost:6379/0
	RedisURL string

	// Prefix is the key prefix for Redis (only for redis type)
	Prefix string

	// DefaultTTL is the default TTL for cache entries
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for memory cache (0 = unlimited)
	MaxSize int

	// CleanupInterval is the interval for expired entry cleanup
	CleanupInterval time.Duration

	// FallbackToMemory uses a memory cache when Redis is unreachable.
	FallbackToMemory bool
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Type:             CacheBackendMemory,
		Prefix:           "transtree:",
		DefaultTTL:       time.Hour,
		MaxSize:          10000,
		CleanupInterval:  time.Minute,
		FallbackToMemory: true,
	}
}

// CacheResult is the cache created by NewCacheWithInfo and how it was built.
type CacheResult struct {
	Cache       Cache
	BackendType string
	IsFallback  bool
}

// NewCache creates a cache based on the provided configuration.
func NewCache(cfg CacheConfig) (Cache, error) {
	result, err := NewCacheWithInfo(cfg)
	if err != nil {
		return nil, err
	}
	return result.Cache, nil
}

// NewCacheWithInfo creates a Redis cache when cfg asks for one and a memory
// cache otherwise. A Redis connection failure returns an error unless
// FallbackToMemory is set.
func NewCacheWithInfo(cfg CacheConfig) (*CacheResult, error) {
	if cfg.Type == CacheBackendRedis && cfg.RedisURL != "" {
		redisCache, err := NewRedisCache(RedisCacheOptions{
			URL:            cfg.RedisURL,
			Prefix:         cfg.Prefix,
			DefaultTTL:     cfg.DefaultTTL,
			ConnectTimeout: 5 * time.Second,
		})
		if err == nil {
			return &CacheResult{Cache: redisCache, BackendType: CacheBackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return nil, fmt.Errorf("creating redis cache: %w", err)
		}
		slog.Warn("redis unavailable, falling back to memory cache",
			"url", SanitizeRedisURL(cfg.RedisURL), "error", err)
		return &CacheResult{Cache: newMemoryFromConfig(cfg), BackendType: CacheBackendMemory, IsFallback: true}, nil
	}

	return &CacheResult{Cache: newMemoryFromConfig(cfg), BackendType: CacheBackendMemory}, nil
}

func newMemoryFromConfig(cfg CacheConfig) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// SanitizeRedisURL masks the password in a Redis URL for logging.
func SanitizeRedisURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid URL]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
