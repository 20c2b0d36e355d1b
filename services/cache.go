package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const catalogPrefix = "motorent:catalog:"

// CatalogCache is a read-through cache for motorcycle listings. A nil cache is valid
// and always misses.
type CatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.SugaredLogger
}

// NewCatalogCache caches listings in rdb. The client is shared and stays owned by the caller.
func NewCatalogCache(rdb *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *CatalogCache {
	return &CatalogCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *CatalogCache) get(ctx context.Context, key string, dst interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, catalogPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnw("catalog cache read failed", "key", key, "error", err)
		}
		catalogCache.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		catalogCache.WithLabelValues("miss").Inc()
		return false
	}
	catalogCache.WithLabelValues("hit").Inc()
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, v interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, catalogPrefix+key, data, c.ttl).Err(); err != nil {
		c.log.Warnw("catalog cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached catalog entry
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, catalogPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warnw("catalog cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warnw("catalog cache invalidation failed", "error", err)
	}
}
