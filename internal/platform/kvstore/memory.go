// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package kvstore

import (
	"context"
	"sync"
)

// MemoryBackend is a process-local [Backend]. Values do not survive a restart.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// Get implements [Backend].
func (backend *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()

	value, found := backend.values[key]
	return value, found, nil
}

// Set implements [Backend].
func (backend *MemoryBackend) Set(_ context.Context, key, value string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	backend.values[key] = value
	return nil
}

// Remove implements [Backend].
func (backend *MemoryBackend) Remove(_ context.Context, key string) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	delete(backend.values, key)
	return nil
}
