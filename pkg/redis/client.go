package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// Cache key constants
const (
	// Event related keys
	KeyEventsAll  = "events:all"
	KeyEventByID  = "events:%s"       // Individual event data, keyed by event code
	KeyEventStats = "events:%s:stats" // Event + lead status breakdown

	// Lead analytics keys
	KeyLeadAnalytics = "leads:analytics:%s" // Funnel analytics, keyed by filter fingerprint
	KeyDashboard     = "admin:dashboard"    // Admin overview payload
)

// TTL constants
const (
	TTLEvents     = 5 * time.Minute  // Public event list
	TTLEventByID  = 15 * time.Minute // Individual event (metadata changes rarely)
	TTLEventStats = 30 * time.Second // Stats move with every lead mutation
	TTLAnalytics  = time.Minute      // Analytics payloads
	TTLDashboard  = 30 * time.Second // Dashboard overview
)

// NewClient creates a new Redis client
func NewClient(redisURL string, environment string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 50
	opts.MinIdleConns = 5
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	dur := time.Since(start)
	if err != nil && err != redis.Nil {
		c.log.Info("redis_get",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_get",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
	}
	return val, err
}

// Set stores a value in Redis with TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_set",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
	}
	return err
}

// SetNX sets a value only if it doesn't exist
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_setnx",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_setnx",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Bool("result", ok),
			zap.Duration("duration", dur))
	}
	return ok, err
}

// Delete removes keys from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := c.rdb.Del(ctx, keys...).Err()
	c.log.Debug("redis_del",
		zap.Int("keys", len(keys)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	return err
}

// Exists checks if a key exists
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.Exists(ctx, keys...).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_exists",
			zap.Int("keys", len(keys)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_exists",
			zap.Int64("result", n),
			zap.Int("keys", len(keys)),
			zap.Duration("duration", dur))
	}
	return n, err
}

// Expire sets a TTL on a key
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Expire(ctx, key, ttl).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_expire",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_expire",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur))
	}
	return err
}

// Health checks the Redis connection
func (c *Client) Health(ctx context.Context) error {
	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_ping",
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_ping", zap.Duration("duration", dur))
	}
	return err
}

// InvalidatePattern removes keys matching a pattern (use carefully in production)
func (c *Client) InvalidatePattern(ctx context.Context, pattern string) error {
	keys, err := c.rdb.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.rdb.Del(ctx, keys...).Err()
	}
	return nil
}

// Pipeline creates a new pipeline for batch operations
func (c *Client) Pipeline() redis.Pipeliner {
	return c.rdb.Pipeline()
}

// prefixForLog returns a safe prefix of a key to avoid logging PII
func prefixForLog(key string) string {
	if len(key) <= 24 {
		return key
	}
	return key[:24] + "…"
}
