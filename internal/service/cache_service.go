package service

import (
	"context"
	"encoding/json"
	"time"

	"katalyst-be/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService provides JSON cache-aside helpers over Redis. All methods are
// no-ops when Redis is not configured, so callers never branch on its
// presence.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// Keys exposes the environment-aware key builder, nil without Redis
func (c *CacheService) Keys() *redis.KeyBuilder {
	if c.redis == nil {
		return redis.NewKeyBuilder("production")
	}
	return c.redis.KeyBuilder
}

// GetJSON loads a cached value into dest. A miss, a Redis error, or a
// corrupted payload all report false and the caller falls back to the store.
func (c *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c.redis == nil {
		return false
	}

	cached, err := c.redis.Get(ctx, key)
	if err == goredis.Nil {
		c.logger.Debug("cache miss", zap.String("key", key))
		return false
	}
	if err != nil {
		c.logger.Warn("cache error, falling back to store",
			zap.String("key", key),
			zap.Error(err))
		return false
	}

	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		c.logger.Warn("cache corrupted, falling back to store",
			zap.String("key", key),
			zap.Error(err))
		return false
	}

	c.logger.Debug("cache hit", zap.String("key", key))
	return true
}

// SetJSONAsync caches a value in the background (fire and forget)
func (c *CacheService) SetJSONAsync(key string, value interface{}, ttl time.Duration) {
	if c.redis == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("failed to marshal cache value",
			zap.String("key", key),
			zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.redis.Set(ctx, key, payload, ttl); err != nil {
			c.logger.Warn("failed to cache value",
				zap.String("key", key),
				zap.Error(err))
		}
	}()
}

// Invalidate removes cached keys, tolerating Redis failures
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if c.redis == nil || len(keys) == 0 {
		return
	}
	if err := c.redis.Delete(ctx, keys...); err != nil {
		c.logger.Warn("failed to invalidate cache keys",
			zap.Int("keys", len(keys)),
			zap.Error(err))
	}
}

// InvalidateAnalytics drops every cached analytics payload. Analytics keys
// embed a filter fingerprint, so invalidation goes by pattern.
func (c *CacheService) InvalidateAnalytics(ctx context.Context) {
	if c.redis == nil {
		return
	}
	pattern := c.redis.KeyBuilder.KeyLeadAnalytics("*")
	if err := c.redis.InvalidatePattern(ctx, pattern); err != nil {
		c.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
	c.Invalidate(ctx, c.redis.KeyBuilder.KeyDashboard())
}
