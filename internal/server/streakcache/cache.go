// Package streakcache keeps a read-through copy of user streak rows in Redis.
// A nil client disables caching; Redis failures degrade to cache misses.
package streakcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "daybook:streak:"

// Cache is what the streak service reads through.
type Cache interface {
	Get(ctx context.Context, userID string) (*models.UserStreak, bool)
	Set(ctx context.Context, s *models.UserStreak)
	Delete(ctx context.Context, userID string)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logging.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log logging.Logger) *RedisCache {
	if log == nil {
		log = logging.Nop{}
	}
	return &RedisCache{client: client, ttl: ttl, log: log.With("module", "streakcache")}
}

// Connect dials addr and pings it. An empty addr yields a disabled cache.
func Connect(ctx context.Context, addr string, ttl time.Duration, log logging.Logger) (*RedisCache, error) {
	if addr == "" {
		return NewRedisCache(nil, ttl, log), nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisCache(client, ttl, log), nil
}

func key(userID string) string { return keyPrefix + userID }

func (c *RedisCache) Enabled() bool { return c.client != nil }

func (c *RedisCache) Get(ctx context.Context, userID string) (*models.UserStreak, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn(ctx, "streak cache get failed", "user_id", userID, "error", err)
		}
		return nil, false
	}
	var s models.UserStreak
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.Warn(ctx, "streak cache entry corrupt", "user_id", userID, "error", err)
		c.Delete(ctx, userID)
		return nil, false
	}
	return &s, true
}

func (c *RedisCache) Set(ctx context.Context, s *models.UserStreak) {
	if c.client == nil || s == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(s.UserID), data, c.ttl).Err(); err != nil {
		c.log.Warn(ctx, "streak cache set failed", "user_id", s.UserID, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, userID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		c.log.Warn(ctx, "streak cache delete failed", "user_id", userID, "error", err)
	}
}

func (c *RedisCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
