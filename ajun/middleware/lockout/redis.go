package lockout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lockout:"

type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(addr string) *RedisBackend {
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

func newRedisBackendWithClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func redisKey(identifier string) string {
	return keyPrefix + identifier
}

func (rb *RedisBackend) Get(ctx context.Context, identifier string) (*AttemptRecord, error) {
	const op = "lockout.redis.Get"

	result, err := rb.client.Get(ctx, redisKey(identifier)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var record AttemptRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &record, nil
}

func (rb *RedisBackend) Set(ctx context.Context, identifier string, record *AttemptRecord) error {
	const op = "lockout.redis.Set"

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := rb.client.Set(ctx, redisKey(identifier), data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (rb *RedisBackend) Delete(ctx context.Context, identifier string) error {
	const op = "lockout.redis.Delete"

	if err := rb.client.Del(ctx, redisKey(identifier)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (rb *RedisBackend) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := rb.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

func (rb *RedisBackend) List(ctx context.Context) (map[string]*AttemptRecord, error) {
	const op = "lockout.redis.List"

	keys, err := rb.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make(map[string]*AttemptRecord, len(keys))
	for _, key := range keys {
		val, err := rb.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// removed between SCAN and GET
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		var record AttemptRecord
		if err := json.Unmarshal([]byte(val), &record); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[strings.TrimPrefix(key, keyPrefix)] = &record
	}

	return result, nil
}

func (rb *RedisBackend) Clear(ctx context.Context) error {
	const op = "lockout.redis.Clear"

	keys, err := rb.keys(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(keys) > 0 {
		if err := rb.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (rb *RedisBackend) Close() error {
	return rb.client.Close()
}
