package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL applies when the caller doesn't pick one
	DefaultCacheTTL = 15 * time.Minute
	// MinCacheTTL / MaxCacheTTL clamp caller-supplied TTLs. Catalog data only
	// changes on admin writes, which also invalidate, so short TTLs are fine.
	MinCacheTTL = 5 * time.Minute
	MaxCacheTTL = 30 * time.Minute

	// Keys used by the catalog handlers
	CacheKeyPublishedItems = "items:published"
	CacheKeyCategories     = "categories"
)

// Cache wraps Redis for catalog read paths. Values are stored as JSON; a
// miss is not an error.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Get retrieves a value from cache. The bool reports whether it was a hit.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, CacheKeyPrefix+key).Result()
	if err != nil {
		return false, nil // Cache miss, not an error
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in cache with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, DefaultCacheTTL)
}

// SetWithTTL stores a value in cache with a TTL clamped to the allowed range.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, CacheKeyPrefix+key, jsonData, ttl).Err()
}

// Delete removes one or more keys from cache.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = CacheKeyPrefix + key
	}
	return c.rdb.Del(ctx, prefixed...).Err()
}
