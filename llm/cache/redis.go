package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds connection settings for the Redis cache.
type RedisConfig struct {
	Addr         string `yaml:"addr" json:"addr" env:"ADDR"`
	Password     string `yaml:"password" json:"password" env:"PASSWORD"`
	DB           int    `yaml:"db" json:"db" env:"DB"`
	PoolSize     int    `yaml:"pool_size" json:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int    `yaml:"min_idle_conns" json:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// DefaultRedisConfig returns local-instance defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     "localhost:6379",
		PoolSize: 10,
	}
}

// Redis is a Cache backed by a Redis instance.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Info("redis cache connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &Redis{client: client, logger: logger}, nil
}

// NewRedisWithClient wraps an existing client, e.g. one pointed at a test
// instance.
func NewRedisWithClient(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger}
}

// Get returns the cached value or ErrCacheMiss.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key. A zero ttl means no expiry.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key if present.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
