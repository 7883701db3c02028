package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"vidops/internal/config"
)

// RedisCache wraps the go-redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and pings it.
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Set stores a JSON-encoded value.
func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get loads a JSON-encoded value into dest.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes keys.
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Exists reports whether key exists.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// Close closes the connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Client returns the raw client.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Key patterns.
const (
	SelectionCacheKeyPrefix = "selection:"
)

// SelectionCacheKey builds the cache key for a corrected provider selection.
// The key is derived from the request shape so identical dashboard submissions
// skip the classifier round-trip.
func SelectionCacheKey(fingerprint string) string {
	return SelectionCacheKeyPrefix + fingerprint
}
