package preferenceRepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisPreferenceRepo stores preferences as plain redis strings without expiry.
type RedisPreferenceRepo struct {
	client *redis.Client
}

func NewRedisPreferenceRepo(client *redis.Client) *RedisPreferenceRepo {
	return &RedisPreferenceRepo{client: client}
}

func (r *RedisPreferenceRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisPreferenceRepo) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}
