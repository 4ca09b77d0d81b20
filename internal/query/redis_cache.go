package query

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/checkout/pkg/api"
)

// RedisCache is an api.Cache backed by Redis, for sharing query results
// across processes. Keys are stored under a configurable prefix with
// Redis-native expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

var _ api.Cache = (*RedisCache)(nil)

// NewRedisCache creates a RedisCache.
// prefix is optional but recommended (e.g. "checkout:query:").
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "checkout:query:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
