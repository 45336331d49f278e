// Package cache provides the byte-oriented read-through caches used for catalog lookups.
package cache

import (
	"context"
	"sync"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Add stores value only when key holds no live entry and reports whether it did.
	Add(ctx context.Context, key string, value []byte) bool
	Delete(ctx context.Context, key string)
}

type entry struct {
	value  []byte
	expiry time.Time
}

// Memory is an in-process cache with a fixed time-to-live.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu   sync.RWMutex
	data map[string]entry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]entry),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiry) {
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry{value: value, expiry: m.now().Add(m.ttl)}
}

func (m *Memory) Add(_ context.Context, key string, value []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.data[key]; ok && now.Before(e.expiry) {
		return false
	}
	m.data[key] = entry{value: value, expiry: now.Add(m.ttl)}
	return true
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}
