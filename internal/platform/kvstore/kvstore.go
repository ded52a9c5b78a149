// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package kvstore wraps a string-keyed storage facility with JSON encoding.

The [Adapter] is the only way the rest of the application touches persisted
preferences. Every operation is synchronous from the caller's point of view
and never returns an error: backend failures (quota, disabled storage, Redis
unreachable) are logged and reported as a false/absent result.

Backends:

  - [MemoryBackend]: process-local map, used in development and tests.
  - [RedisBackend]: go-redis client with a sliding TTL per key.
*/
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/charadex/internal/platform/constants"
)

// ErrUnavailable is returned by backends that are switched off.
var ErrUnavailable = errors.New("kvstore: storage unavailable")

// Backend is the raw key-value facility behind an [Adapter].
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Adapter is a namespaced, JSON-encoding view over a [Backend].
//
// # Concurrency
//
// Adapter holds no mutable state and is safe for concurrent use as long as
// its Backend is.
type Adapter struct {
	backend Backend
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an Adapter over backend with no key prefix.
func New(backend Backend, logger *slog.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		timeout: constants.KVOperationTimeout,
		logger:  logger,
	}
}

// Scope returns an Adapter whose keys are prefixed with namespace + ":".
func (adapter *Adapter) Scope(namespace string) *Adapter {
	scoped := *adapter
	scoped.prefix = adapter.prefix + namespace + ":"
	return &scoped
}

// Load decodes the value stored under key into target.
//
// It reports false when the key is absent, the backend fails, or the stored
// value is not valid JSON for target; target is left untouched in those cases.
func (adapter *Adapter) Load(key string, target any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), adapter.timeout)
	defer cancel()

	raw, found, err := adapter.backend.Get(ctx, adapter.prefix+key)
	if err != nil {
		adapter.logger.Warn("kv_read_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	if !found {
		return false
	}

	if err := json.Unmarshal([]byte(raw), target); err != nil {
		adapter.logger.Warn("kv_decode_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	return true
}

// Set encodes value as JSON and stores it under key. It reports success.
func (adapter *Adapter) Set(key string, value any) bool {
	encoded, err := json.Marshal(value)
	if err != nil {
		adapter.logger.Warn("kv_encode_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), adapter.timeout)
	defer cancel()

	if err := adapter.backend.Set(ctx, adapter.prefix+key, string(encoded)); err != nil {
		adapter.logger.Warn("kv_write_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	return true
}

// Remove deletes key. It reports success.
func (adapter *Adapter) Remove(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), adapter.timeout)
	defer cancel()

	if err := adapter.backend.Remove(ctx, adapter.prefix+key); err != nil {
		adapter.logger.Warn("kv_remove_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	return true
}

// Loader is the read side of an [Adapter].
type Loader interface {
	Load(key string, target any) bool
}

// Get is the typed form of [Adapter.Load], returning fallback when nothing usable is stored.
func Get[T any](loader Loader, key string, fallback T) T {
	var value T
	if !loader.Load(key, &value) {
		return fallback
	}
	return value
}
