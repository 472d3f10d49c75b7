//go:generate go run go.uber.org/mock/mockgen -source=fragment_store.go -destination=../../mocks/mock_fragment_store.go -package=mocks
package storage

import (
	"bytes"
	"sync"
)

// IFragmentStore maps a fragment name to its raw bytes.
// Put always overwrites. Get reports absence through ok, never through an error;
// the error is reserved for the backing medium failing.
type IFragmentStore interface {
	Put(name string, data []byte) error
	Get(name string) (data []byte, ok bool, err error)
}

// MemoryFragmentStore lives as long as the process. Nothing is ever evicted.
type MemoryFragmentStore struct {
	mu        sync.RWMutex
	fragments map[string][]byte
}

func NewMemoryFragmentStore() *MemoryFragmentStore {
	return &MemoryFragmentStore{fragments: make(map[string][]byte)}
}

func (m *MemoryFragmentStore) Put(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fragments[name] = bytes.Clone(data)
	return nil
}

func (m *MemoryFragmentStore) Get(name string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.fragments[name]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(data), true, nil
}

func (m *MemoryFragmentStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.fragments)
}
