// Package redis provides the Redis-backed cache invalidation coordinator.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Invalidator deletes derived read-cache entries from Redis. It implements
// service.CacheInvalidator.
type Invalidator struct {
	client *redis.Client
	logger *slog.Logger
}

// NewInvalidator creates an Invalidator over the given Redis address and
// verifies connectivity with a ping.
func NewInvalidator(ctx context.Context, addr string, logger *slog.Logger) (*Invalidator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Invalidator{
		client: client,
		logger: logger.With(slog.String("component", "cache_invalidator")),
	}, nil
}

// Invalidate implements service.CacheInvalidator. Missing keys are not an
// error; DEL is a no-op for them.
func (i *Invalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := i.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache keys: %w", err)
	}

	i.logger.Debug("invalidated cache keys", slog.Int("count", len(keys)))
	return nil
}

// Close releases the underlying Redis connection.
func (i *Invalidator) Close() error {
	return i.client.Close()
}
