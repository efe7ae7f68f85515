package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewClient connects to Redis. When the server cannot be reached it logs a
// warning and reports enabled=false; callers then run without a cache.
func NewClient(ctx context.Context, addr, password string, logger *zap.Logger) (*redis.Client, bool) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("redis")

	if addr == "" {
		logger.Info("no address configured, cache disabled")
		return nil, false
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("could not connect, running without cache", zap.String("addr", addr), zap.Error(err))
		client.Close()
		return nil, false
	}

	logger.Info("connected", zap.String("addr", addr))
	return client, true
}

// RedisCache acts as a wrapper around redis.Client to implement the
// leaderboard Cache interface
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set stores a key-value pair with expiration
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key. A missing key is reported as ErrMiss.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	return val, err
}

// Del deletes keys
func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

type cacheError string

func (e cacheError) Error() string { return string(e) }

const ErrMiss cacheError = "cache miss"
