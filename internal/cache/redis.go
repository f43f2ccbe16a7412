package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookbuddy/matchengine/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// AcquireRunLock takes the per-period run lock. Returns false when
// another run for the same period already holds it.
func (c *RedisCache) AcquireRunLock(ctx context.Context, periodID string, ttl time.Duration) (bool, error) {
	return c.Client.SetNX(ctx, keyForRunLock(periodID), 1, ttl).Result()
}

// ReleaseRunLock drops the per-period run lock.
func (c *RedisCache) ReleaseRunLock(ctx context.Context, periodID string) error {
	return c.Client.Del(ctx, keyForRunLock(periodID)).Err()
}

func keyForRunLock(periodID string) string {
	return "match:runlock:" + periodID
}

// KeyForPairingCount generates Redis key for a user's pairing count
func (c *RedisCache) KeyForPairingCount(userID uint64) string {
	return fmt.Sprintf("match:count:%d", userID)
}

func (c *RedisCache) UpdatePairingCount(ctx context.Context, userID uint64, count int64) error {
	key := c.KeyForPairingCount(userID)
	// Always refresh TTL when updating
	return c.Client.Set(ctx, key, count, time.Hour).Err()
}

// GetPairingCount reads a user's cached pairing total. The second
// return distinguishes a cache miss from a cached zero so callers can
// fall back to the database.
func (c *RedisCache) GetPairingCount(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForPairingCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, time.Hour).Err()
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}
