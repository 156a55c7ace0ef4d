package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moaahil1110/LikeLoop/internal/config"
)

const hotKeySuffix = ":hotkeys"

// RedisProfileCache implements ProfileCache backed by Redis.
type RedisProfileCache struct {
	client *redis.Client
	prefix string
}

// NewRedisProfileCache creates a Redis-backed profile cache.
func NewRedisProfileCache(cfg config.RedisConfig, prefix string) (*RedisProfileCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisProfileCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisProfileCache) key(userID string) string {
	return fmt.Sprintf("%s:counts:%s", c.prefix, userID)
}

func (c *RedisProfileCache) hotKeysKey() string {
	return c.prefix + hotKeySuffix
}

// Get returns the cached counts for a user, or ErrCacheMiss.
func (c *RedisProfileCache) Get(ctx context.Context, userID string) (*ProfileCounts, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var counts ProfileCounts
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &counts, nil
}

// Set stores the counts for a user with the given TTL.
func (c *RedisProfileCache) Set(ctx context.Context, userID string, counts *ProfileCounts, ttl time.Duration) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

// Invalidate drops the cached counts for the given users.
func (c *RedisProfileCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

// RecordAccess increments the access score for a user in the hot-key
// sorted set.
func (c *RedisProfileCache) RecordAccess(ctx context.Context, userID string) error {
	if err := c.client.ZIncrBy(ctx, c.hotKeysKey(), 1, userID).Err(); err != nil {
		return fmt.Errorf("redis record access: %w", err)
	}
	return nil
}

// TopHotKeys returns the n most accessed user IDs.
func (c *RedisProfileCache) TopHotKeys(ctx context.Context, n int64) ([]string, error) {
	keys, err := c.client.ZRevRange(ctx, c.hotKeysKey(), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get top hot keys: %w", err)
	}
	return keys, nil
}

// ResetHotKeys deletes the hot-key sorted set.
func (c *RedisProfileCache) ResetHotKeys(ctx context.Context) error {
	if err := c.client.Del(ctx, c.hotKeysKey()).Err(); err != nil {
		return fmt.Errorf("redis reset hot key scores: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisProfileCache) Close() error {
	return c.client.Close()
}

// Ensure interface is satisfied at compile time.
var _ ProfileCache = (*RedisProfileCache)(nil)
