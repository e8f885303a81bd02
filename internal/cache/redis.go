package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carsties/auction-service/internal/config"
	"github.com/carsties/auction-service/internal/logger"
)

// RedisCache implements Cache on a Redis client. A nil client (Redis was
// unreachable at startup) or a disabled config turns every operation into a
// pass-through: reads miss, writes do nothing. Per-call Redis errors are
// logged at warn for operators and otherwise swallowed — the caller re-reads
// the store and repopulates on the next cycle.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache builds a RedisCache from the cache config and an optional
// client. Pass rdb == nil to run in degraded pass-through mode.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) *RedisCache {
	if !cfg.Enabled {
		rdb = nil
	}
	return &RedisCache{rdb: rdb, prefix: cfg.Prefix}
}

// Available reports whether a Redis client is wired in at all. The cache
// admin endpoints use this to describe degraded mode.
func (c *RedisCache) Available() bool {
	return c.rdb != nil
}

func (c *RedisCache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.rdb == nil {
		return nil, false
	}
	bs, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache get failed", map[string]any{"key": key, "error": err.Error()})
		}
		return nil, false
	}
	return bs, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		logger.Warn("cache set failed", map[string]any{"key": key, "error": err.Error()})
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	if err := c.rdb.Del(ctx, prefixed...).Err(); err != nil {
		logger.Warn("cache invalidate failed", map[string]any{"keys": keys, "error": err.Error()})
	}
}

// InvalidateByPrefix walks matching keys with SCAN rather than KEYS so a
// large keyspace does not stall Redis.
func (c *RedisCache) InvalidateByPrefix(ctx context.Context, prefix string) {
	if c.rdb == nil {
		return
	}
	pattern := c.key(prefix) + "*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("cache prefix invalidate failed", map[string]any{"key": iter.Val(), "error": err.Error()})
		}
	}
	if err := iter.Err(); err != nil {
		logger.Warn("cache prefix scan failed", map[string]any{"prefix": prefix, "error": err.Error()})
	}
}

func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	if c.rdb == nil {
		return false
	}
	n, err := c.rdb.Exists(ctx, c.key(key)).Result()
	if err != nil {
		logger.Warn("cache exists failed", map[string]any{"key": key, "error": err.Error()})
		return false
	}
	return n > 0
}
