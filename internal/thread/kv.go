package thread

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KV is the string-keyed, string-valued substrate threads are persisted to.
// A missing key reads as the empty string, not an error.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
}

// RedisKV implements KV on top of a Redis client.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV wraps a Redis client as a KV store.
func NewRedisKV(client *redis.Client) *RedisKV {
	if client == nil {
		return nil
	}
	return &RedisKV{client: client}
}

func (s *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("thread: kv get %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("thread: kv set %s: %w", key, err)
	}
	return nil
}

func (s *RedisKV) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("thread: kv del: %w", err)
	}
	return nil
}
