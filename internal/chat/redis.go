package chat

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DurableStore is the minimal contract the history cache needs from an
// external ordered-list store: newest entries at the front.
type DurableStore interface {
	Ping(ctx context.Context) error
	PushFront(ctx context.Context, key, value string) error
	Trim(ctx context.Context, key string, start, stop int64) error
	// Range returns entries newest-first.
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// RedisHistory implements DurableStore on a Redis list.
type RedisHistory struct {
	client *redis.Client
}

// NewRedisHistory creates a Redis-backed durable store. The connection is
// established lazily; liveness is checked per operation via Ping.
func NewRedisHistory(addr, password string) *RedisHistory {
	return &RedisHistory{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (r *RedisHistory) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisHistory) PushFront(ctx context.Context, key, value string) error {
	if err := r.client.LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", key, err)
	}
	return nil
}

func (r *RedisHistory) Trim(ctx context.Context, key string, start, stop int64) error {
	if err := r.client.LTrim(ctx, key, start, stop).Err(); err != nil {
		return fmt.Errorf("ltrim %s: %w", key, err)
	}
	return nil
}

func (r *RedisHistory) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := r.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	return vals, nil
}

// Close releases the underlying client.
func (r *RedisHistory) Close() error {
	return r.client.Close()
}
