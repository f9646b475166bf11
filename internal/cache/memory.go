package cache

import (
	"sync"
	"time"
)

// MemStore is an in-memory Store. Mutation is atomic per key; a read never
// observes a half-written entry.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]Entry)}
}

func (m *MemStore) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (m *MemStore) Set(key string, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	m.mu.Lock()
	m.entries[key] = Entry{Key: key, Value: cp, WrittenAt: time.Now()}
	m.mu.Unlock()
}

func (m *MemStore) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}
