package storage

import (
	"context"
	"sync"
)

// MemoryStore implements Store in memory. It is used when persistence is
// disabled and by tests, which inspect the read/write counters.
type MemoryStore struct {
	mu      sync.RWMutex
	data    []byte
	present bool
	reads   int
	writes  int
}

// NewMemoryStore creates a store, optionally seeded with an existing snapshot.
func NewMemoryStore(seed ...[]byte) *MemoryStore {
	ms := &MemoryStore{}
	if len(seed) > 0 && seed[0] != nil {
		ms.data = append([]byte(nil), seed[0]...)
		ms.present = true
	}
	return ms
}

func (ms *MemoryStore) Exists(ctx context.Context) (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.present, nil
}

func (ms *MemoryStore) Read(ctx context.Context) ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.reads++
	if !ms.present {
		return nil, ErrNotFound
	}
	return append([]byte(nil), ms.data...), nil
}

func (ms *MemoryStore) Write(ctx context.Context, data []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.writes++
	ms.data = append([]byte(nil), data...)
	ms.present = true
	return nil
}

func (ms *MemoryStore) Close() error { return nil }

// Data returns a copy of the stored snapshot.
func (ms *MemoryStore) Data() []byte {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]byte(nil), ms.data...)
}

func (ms *MemoryStore) Reads() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.reads
}

func (ms *MemoryStore) Writes() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.writes
}

var _ Store = (*MemoryStore)(nil)
