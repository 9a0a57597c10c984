package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/constant"
	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// CachedLink is the immutable part of a link needed to serve a redirect.
type CachedLink struct {
	ID        uint   `json:"id"`
	TargetURL string `json:"targetUrl"`
}

// RedisLinkCache keeps CachedLink values in redis under constant.GetShortCodeKey. Failures
// are logged and reported as misses; the database stays authoritative.
type RedisLinkCache struct {
	pool    *redis.Pool
	ttl     time.Duration
	logger  *zap.Logger
	metrics *Metrics
}

func NewRedisLinkCache(pool *redis.Pool, ttl time.Duration, logger *zap.Logger, metrics *Metrics) *RedisLinkCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisLinkCache{pool: pool, ttl: ttl, logger: logger, metrics: metrics}
}

func (c *RedisLinkCache) Get(ctx context.Context, code string) (CachedLink, bool) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		c.logger.Warn("redis unavailable", zap.Error(err))
		c.metrics.cacheHit(false)
		return CachedLink{}, false
	}
	defer c.closeConn(conn)

	cacheKey := constant.GetShortCodeKey(code)
	cachedValue, err := redis.Bytes(conn.Do("GET", cacheKey))
	if err != nil {
		if !errors.Is(err, redis.ErrNil) {
			c.logger.Warn("Error getting from Redis",
				zap.String("cache_key", cacheKey),
				zap.Error(err))
		}
		c.metrics.cacheHit(false)
		return CachedLink{}, false
	}

	var link CachedLink
	if err := json.Unmarshal(cachedValue, &link); err != nil || link.ID == 0 {
		c.logger.Warn("Failed to unmarshal cached value",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
		c.metrics.cacheHit(false)
		return CachedLink{}, false
	}

	c.metrics.cacheHit(true)
	return link, true
}

func (c *RedisLinkCache) Set(ctx context.Context, code string, link CachedLink) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		c.logger.Warn("redis unavailable", zap.Error(err))
		return
	}
	defer c.closeConn(conn)

	cacheKey := constant.GetShortCodeKey(code)
	value, err := json.Marshal(link)
	if err != nil {
		return
	}
	if _, err := conn.Do("SET", cacheKey, value, "EX", int(c.ttl.Seconds())); err != nil {
		c.logger.Error("Failed to set cache",
			zap.String("cache_key", cacheKey),
			zap.Error(err),
		)
	}
}

func (c *RedisLinkCache) Delete(ctx context.Context, code string) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		c.logger.Warn("redis unavailable", zap.Error(err))
		return
	}
	defer c.closeConn(conn)

	cacheKey := constant.GetShortCodeKey(code)
	if _, err := conn.Do("DEL", cacheKey); err != nil {
		c.logger.Warn("Failed to delete cache",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}
}

func (c *RedisLinkCache) closeConn(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection",
			zap.Error(err),
			zap.String("operation", "close"),
			zap.String("connection_type", "redis"),
		)
	}
}
