// Package redisx is the Redis implementation of cache.Backend.
//
// It deliberately stays thin: connection handling, the nil-reply-means-miss
// translation, and nothing else. Timeouts, error swallowing, and logging all
// live in the cache.Store wrapper so the policy is identical for every
// backend.
package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/doctalk/internal/cache"
)

// compile-time check that *Backend implements cache.Backend
var _ cache.Backend = (*Backend)(nil)

// Config holds connection settings for the accelerator.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Backend wraps a go-redis client.
type Backend struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection with a ping. The service
// treats a failed ping at startup as "run without a cache", not as a fatal
// error — that decision belongs to the caller, so New just reports it.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis: pinging %s: %w", cfg.Addr, err)
	}

	return &Backend{rdb: rdb}, nil
}

// Get returns (nil, nil) when the key does not exist — redis.Nil is the
// client's "no such key" reply, not a failure.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: GET %q: %w", key, err)
	}
	return val, nil
}

func (b *Backend) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := b.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis: SET %q: %w", key, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: DEL %q: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (b *Backend) Close() error {
	return b.rdb.Close()
}
