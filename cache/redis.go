package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/pugtl"
)

// DefaultKeyPrefix namespaces translation keys in a shared Redis.
const DefaultKeyPrefix = "pugtl:"

// opTimeout bounds each Redis round trip. The cache interface has no
// context, and a slow Redis must not stall a rewrite.
const opTimeout = 2 * time.Second

// RedisCache is a Redis-backed translation cache shared between runs and
// machines.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    zerolog.Logger
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string         // Redis connection URL (e.g., "redis://localhost:6379/0")
	TTL       time.Duration  // 0 = no expiration
	KeyPrefix string         // Prefix for all keys (default: "pugtl:")
	Logger    zerolog.Logger // Receives read errors, which count as misses
}

// NewRedisCache connects to Redis and checks the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &pugtl.CacheError{Op: "connect", Key: cfg.URL, Cause: err}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, &pugtl.CacheError{Op: "connect", Key: opts.Addr, Cause: err}
	}

	c := NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix)
	c.logger = cfg.Logger
	return c, nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    zerolog.Nop(),
	}
}

// Get retrieves a value from Redis. Errors are logged and reported as a miss.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		return "", false
	}
	return val, true
}

// Set stores a value in Redis.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err(); err != nil {
		return &pugtl.CacheError{Op: "set", Key: key, Cause: err}
	}
	return nil
}

// Entries scans every key under the prefix.
func (c *RedisCache) Entries() (map[string]string, error) {
	ctx := context.Background()
	result := make(map[string]string)

	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		val, err := c.client.Get(ctx, fullKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, &pugtl.CacheError{Op: "get", Key: fullKey, Cause: err}
		}
		result[fullKey[len(c.keyPrefix):]] = val
	}
	if err := iter.Err(); err != nil {
		return nil, &pugtl.CacheError{Op: "scan", Key: c.keyPrefix + "*", Cause: err}
	}
	return result, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ Snapshotter = (*RedisCache)(nil)
