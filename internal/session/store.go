package session

import (
	"context"
	"sync"
)

// Store is the key-value persistence collaborator the cart delegates to. A
// cart uses three logical slots: items, cart conditions and cart taxes, each
// stored as a JSON blob.
type Store interface {
	// Get returns the stored payload, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores the payload under the key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the key, if present.
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Store used when no Redis URL is configured and in
// tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
