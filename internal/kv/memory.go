package kv

import (
	"sync"

	"liftbox/internal/store"
)

// MemoryBackend is an in-memory implementation of the store.Backend
// interface. Each box carries its own lock, so writes to unrelated
// collections never serialize against each other. Useful for testing
// and as the reference implementation of the backend contract.
type MemoryBackend struct {
	mu    sync.RWMutex // guards the boxes map itself
	boxes map[string]*memBox
}

type memBox struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{boxes: make(map[string]*memBox)}
}

// box returns the named box, creating it when create is set.
func (m *MemoryBackend) box(name string, create bool) *memBox {
	m.mu.RLock()
	b := m.boxes[name]
	m.mu.RUnlock()
	if b != nil || !create {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b = m.boxes[name]; b == nil {
		b = &memBox{entries: make(map[string][]byte)}
		m.boxes[name] = b
	}
	return b
}

// Put stores a copy of value under key.
func (m *MemoryBackend) Put(box, key string, value []byte) error {
	b := m.box(box, true)
	cp := make([]byte, len(value))
	copy(cp, value)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = cp
	return nil
}

// Get returns a copy of the stored value.
func (m *MemoryBackend) Get(box, key string) ([]byte, bool, error) {
	b := m.box(box, false)
	if b == nil {
		return nil, false, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	value, ok := b.entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

// Delete removes the entry; absent keys are a no-op.
func (m *MemoryBackend) Delete(box, key string) error {
	b := m.box(box, false)
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}

// Keys returns every key currently present in the box.
func (m *MemoryBackend) Keys(box string) ([]string, error) {
	b := m.box(box, false)
	if b == nil {
		return nil, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.entries))
	for key := range b.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

// Has reports whether the key is present.
func (m *MemoryBackend) Has(box, key string) (bool, error) {
	b := m.box(box, false)
	if b == nil {
		return false, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[key]
	return ok, nil
}

// Len returns the number of entries in the box.
func (m *MemoryBackend) Len(box string) (int, error) {
	b := m.box(box, false)
	if b == nil {
		return 0, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries), nil
}

// Clear removes every entry from the box.
func (m *MemoryBackend) Clear(box string) error {
	b := m.box(box, false)
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string][]byte)
	return nil
}

// ClearAll removes every entry from every box.
func (m *MemoryBackend) ClearAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.boxes {
		b.mu.Lock()
		b.entries = make(map[string][]byte)
		b.mu.Unlock()
	}
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryBackend) Close() error { return nil }

// Compile-time check that MemoryBackend implements store.Backend
var _ store.Backend = (*MemoryBackend)(nil)
