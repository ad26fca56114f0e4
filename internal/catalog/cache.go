package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheKey = "catalog:services"

// Cache stores the last normalized remote catalog.
type Cache interface {
	Get(ctx context.Context) ([]Service, bool, error)
	Set(ctx context.Context, services []Service) error
}

// RedisCache keeps the catalog as one JSON value with a TTL.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCache creates a redis-backed catalog cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, key: defaultCacheKey, ttl: ttl}
}

// Get returns the cached services; ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context) ([]Service, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog: cache get: %w", err)
	}

	var services []Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, false, fmt.Errorf("catalog: cache unmarshal: %w", err)
	}
	if len(services) == 0 {
		return nil, false, nil
	}
	return services, true, nil
}

// Set stores services, replacing any previous value.
func (c *RedisCache) Set(ctx context.Context, services []Service) error {
	data, err := json.Marshal(services)
	if err != nil {
		return fmt.Errorf("catalog: cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("catalog: cache set: %w", err)
	}
	return nil
}
