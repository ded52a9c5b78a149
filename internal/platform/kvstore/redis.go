// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/charadex/internal/platform/constants"
)

// RedisBackend implements [Backend] on top of a go-redis client.
//
// Every key lives under [constants.RedisPrefixSession] and is written with a
// TTL, so abandoned preferences expire on their own.
type RedisBackend struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisBackend creates a Redis-backed [Backend].
func NewRedisBackend(client redis.Cmdable, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

/*
Get retrieves a raw value.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - string: Stored value
  - bool: Whether the key exists
  - error: Connectivity errors (a missing key is not an error)
*/
func (backend *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := backend.client.Get(ctx, constants.RedisPrefixSession+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis_kv_get_failed: %w", err)
	}

	return value, true, nil
}

// Set stores a raw value and refreshes its TTL.
func (backend *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := backend.client.Set(ctx, constants.RedisPrefixSession+key, value, backend.ttl).Err(); err != nil {
		return fmt.Errorf("redis_kv_set_failed: %w", err)
	}
	return nil
}

// Remove deletes a key.
func (backend *RedisBackend) Remove(ctx context.Context, key string) error {
	if err := backend.client.Del(ctx, constants.RedisPrefixSession+key).Err(); err != nil {
		return fmt.Errorf("redis_kv_remove_failed: %w", err)
	}
	return nil
}
