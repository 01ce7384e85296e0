package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryProvider is an in-process Provider with per-key expiry. It serves
// single-node deployments and tests where a Valkey server is not available.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string]memoryItem
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryProvider creates an empty in-memory cache.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string]memoryItem)}
}

// Get returns the cached bytes or ErrCacheMiss when absent or expired.
func (m *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	it, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return it.value, nil
}

// Set stores a copy of value under key. ttl <= 0 means no expiry.
func (m *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	it := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.data[key] = it
	m.mu.Unlock()
	return nil
}

// Del removes a key if present.
func (m *MemoryProvider) Del(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Close discards the cached data.
func (m *MemoryProvider) Close() error {
	m.mu.Lock()
	m.data = make(map[string]memoryItem)
	m.mu.Unlock()
	return nil
}
