package federation

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Cache holds the bridge's last-known-good blobs. Values carry no TTL:
// a failed refresh must leave the previous value in place, and a stale
// answer beats an empty one.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache backs the bridge cache with redis, so last-known-good
// state also survives process restarts.
func NewRedisCache(client *redis.Client, prefix string) Cache {
	return &redisCache{client: client, prefix: prefix}
}

func (c *redisCache) key(key string) string {
	return c.prefix + ":" + key
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return value, err
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, c.key(key), value, 0).Err()
}
