package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Load when nothing is stored under a key
var ErrNotFound = errors.New("key not found")

// Store persists small JSON documents by key, such as carts and login sessions
type Store interface {
	Load(key string, v any) error
	Save(key string, v any) error
	Clear(key string) error
}

// MemoryStore keeps encoded values in memory so callers never share state with the store
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load decodes the value stored under key into v
func (m *MemoryStore) Load(key string, v any) error {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("kvstore: load %q: %w", key, ErrNotFound)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("kvstore: decode %q: %w", key, err)
	}
	return nil
}

// Save encodes v and stores it under key, replacing any previous value
func (m *MemoryStore) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore: encode %q: %w", key, err)
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

// Clear removes key. Clearing a missing key is not an error.
func (m *MemoryStore) Clear(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
