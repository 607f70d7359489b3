package metadata // import "github.com/joincivil/civil-content-registry/pkg/metadata"

import (
	"context"
	"time"

	log "github.com/golang/glog"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultCacheTTL is how long a fetched blob is served from cache
	DefaultCacheTTL = 5 * time.Minute

	redisKeyPrefix = "civil:metadata:"
)

// Cache holds fetched blobs for a fixed time. Entries expire by age only.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// NewLRUCache returns an in-process cache. A size of 0 is unbounded.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &LRUCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// LRUCache is an in-process expiring cache
type LRUCache struct {
	lru *expirable.LRU[string, []byte]
}

// Get returns the cached value if still fresh
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool) {
	return c.lru.Get(key)
}

// Set caches value
func (c *LRUCache) Set(ctx context.Context, key string, value []byte) {
	c.lru.Add(key, value)
}

// NewRedisCache returns a cache shared through redis
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// RedisCache stores blobs in redis with an expiry. Redis failures are
// treated as misses.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// Get returns the cached value if present
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warningf("Error reading metadata cache: err: %v", err)
		}
		return nil, false
	}
	return value, true
}

// Set caches value with the cache ttl
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl).Err()
	if err != nil {
		log.Warningf("Error writing metadata cache: err: %v", err)
	}
}
