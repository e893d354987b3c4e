package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// MissCache remembers codes recently observed to be absent from the store so
// the redirect hot path can answer repeated misses without touching it.
// Entries are short-lived and cleared on create, so the cache is only ever a
// shortcut for not-found answers; correctness never depends on it.
type MissCache interface {
	IsKnownMiss(ctx context.Context, code string) (bool, error)
	MarkMiss(ctx context.Context, code string) error
	Clear(ctx context.Context, code string) error
}

type RedisMissCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMissCache(client *redis.Client, ttl time.Duration) *RedisMissCache {
	return &RedisMissCache{client: client, ttl: ttl}
}

func (c *RedisMissCache) IsKnownMiss(ctx context.Context, code string) (bool, error) {
	key := "miss:" + code
	_, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisMissCache) MarkMiss(ctx context.Context, code string) error {
	key := "miss:" + code
	return c.client.Set(ctx, key, "1", c.ttl).Err()
}

func (c *RedisMissCache) Clear(ctx context.Context, code string) error {
	key := "miss:" + code
	return c.client.Del(ctx, key).Err()
}
