package storage

import (
	"context"
	"strings"
	"sync"
)

var _ Adapter = (*MemoryStore)(nil)

// MemoryStore is the default, non-durable adapter: a mutex-guarded map.
// Suitable for tests and for hosts that accept losing the session on
// process exit.
type MemoryStore struct {
	prefix string
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an in-memory adapter. prefix namespaces the keys so
// multiple clients can share one store.
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		prefix: prefix,
		values: make(map[string]string),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[m.prefix+key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[m.prefix+key] = value
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, m.prefix+key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.values {
		if strings.HasPrefix(k, m.prefix) {
			delete(m.values, k)
		}
	}
	return nil
}
