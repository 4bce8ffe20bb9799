// Package cache implements the TTL-bounded result cache that sits in front of
// geocoding and listing aggregation.
//
// The cache is layered:
//
//   - Store is the persistence substrate: a flat key→bytes map with four
//     primitives (Get, Set, Remove, Keys). It knows nothing about expiry.
//     MemoryStore lives here; a durable SQLite store lives in package repo.
//   - Tier[T] owns a key namespace and a TTL. It wraps payloads in an envelope
//     stamped with the creation time, hides stale entries on read, and sweeps
//     them on demand.
//   - Cache bundles the two tiers used by the search service: short-lived
//     search results and long-lived remembered listings.
//
// Storage faults never propagate: reads degrade to misses and writes are
// dropped, with a warning logged. Caching is an optimization only.
package cache

import (
	"context"
	"sync"
)

// Store is a flat key→value substrate. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Keys lists every stored key in no particular order.
	Keys(ctx context.Context) ([]string, error)
}

// MemoryStore is a process-local Store backed by a map.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	v, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.data[key] = v
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out, nil
}

// Len reports the number of stored keys, including stale ones.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
