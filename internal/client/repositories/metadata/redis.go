package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps entries in a Redis hash, for installations that
// share one cache between several shells on the same machine.
type RedisRepository struct {
	rdb *redis.Client
	key string
}

// NewRedisRepository stores all entries in the hash named prefix + ":local_state".
func NewRedisRepository(rdb *redis.Client, prefix string) *RedisRepository {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = "skincare"
	}
	return &RedisRepository{rdb: rdb, key: prefix + ":local_state"}
}

func (r *RedisRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.HGet(ctx, r.key, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get local_state[%s]: %w", key, err)
	}
	return v, nil
}

func (r *RedisRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.HSet(ctx, r.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to set local_state[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.HDel(ctx, r.key, key).Err(); err != nil {
		return fmt.Errorf("failed to delete local_state[%s]: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear local_state: %w", err)
	}
	return nil
}
