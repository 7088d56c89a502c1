package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryBackend keeps entries in process. Expired entries are dropped lazily
// on access.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]memoryEntry), now: time.Now}
}

// WithClock replaces the time source, for tests.
func (m *MemoryBackend) WithClock(now func() time.Time) *MemoryBackend {
	m.now = now
	return m
}

func (m *MemoryBackend) lookup(key string) (memoryEntry, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return memoryEntry{}, false
	}
	if e.expired(m.now()) {
		m.mu.Lock()
		if cur, still := m.items[key]; still && cur.expired(m.now()) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return memoryEntry{}, false
	}
	return e, true
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	e, ok := m.lookup(key)
	if !ok {
		return "", ErrMissing
	}
	return e.value, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Del(_ context.Context, key string) (bool, error) {
	_, ok := m.lookup(key)

	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return ok, nil
}

func (m *MemoryBackend) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.lookup(key)
	return ok, nil
}

func (m *MemoryBackend) Ping(context.Context) error {
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
