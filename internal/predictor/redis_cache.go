package predictor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/nba-oracle/internal/config"
)

const redisKeyPrefix = "nba-oracle:prob:"

// RedisCache shares predictions between processes through Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = redisKeyPrefix
	}
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

// Get implements Cache
func (r *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	p, err := r.client.Get(ctx, r.prefix+key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get: %w", err)
	}
	return p, true, nil
}

// Set implements Cache
func (r *RedisCache) Set(ctx context.Context, key string, probability float64) error {
	if err := r.client.Set(ctx, r.prefix+key, probability, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (r *RedisCache) Close() error {
	return r.client.Close()
}
