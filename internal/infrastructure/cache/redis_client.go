// Package cache provides the Redis connection shared by the rate limiter and
// the health checks
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pantrymatch/server/internal/infrastructure/config"
)

// RedisClient wraps a go-redis client with the operations this service needs
type RedisClient struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*RedisClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  10 * time.Second,
	})

	return NewRedisClientFrom(ctx, client, logger)
}

// NewRedisClientFrom wraps an existing client and verifies the connection
func NewRedisClientFrom(ctx context.Context, client redis.UniversalClient, logger *zap.Logger) (*RedisClient, error) {
	rc := &RedisClient{client: client, logger: logger.Named("redis")}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	rc.logger.Info("Redis client connected")
	return rc, nil
}

// Ping checks the connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// IncrWindow increments the counter for key and starts its expiry on the
// first hit, implementing a fixed window counter. It returns the count after
// the increment and the time left in the window.
func (r *RedisClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// Client returns the underlying go-redis client
func (r *RedisClient) Client() redis.UniversalClient {
	return r.client
}

// Close closes the connection pool
func (r *RedisClient) Close() error {
	return r.client.Close()
}
