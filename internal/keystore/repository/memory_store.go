// Package repository provides key store backends: in-memory, SQL (PostgreSQL,
// MySQL, SQLite), the OS keyring, and a KMS-sealing decorator.
package repository

import (
	"context"
	"sync"

	keystoreDomain "github.com/l2obin/dekbind/internal/keystore/domain"
)

// MemoryStore keeps entries in process memory. Values are copied on the way in
// and out so callers may zero their slices freely.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[keystoreDomain.Key][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[keystoreDomain.Key][]byte)}
}

// Get returns a copy of the value for key.
func (m *MemoryStore) Get(_ context.Context, key keystoreDomain.Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[key]
	if !ok {
		return nil, keystoreDomain.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value under key.
func (m *MemoryStore) Set(_ context.Context, key keystoreDomain.Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = append([]byte(nil), value...)
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
