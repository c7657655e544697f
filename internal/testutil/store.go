package testutil

import (
	"testing"

	"liftbox/internal/kv"
	"liftbox/internal/store"
)

// NewTestStore creates a Store backed by an in-memory backend. The
// backend is returned as well so tests can plant raw bytes behind the
// Store's back.
func NewTestStore(t *testing.T) (*store.Store, *kv.MemoryBackend) {
	t.Helper()

	backend := kv.NewMemoryBackend()
	s := store.New(backend, store.NewNopLogger())

	t.Cleanup(func() {
		s.Close()
	})

	return s, backend
}

// NewTestEngine creates a BackupEngine over a fresh in-memory Store.
func NewTestEngine(t *testing.T) (*store.BackupEngine, *store.Store) {
	t.Helper()

	s, _ := NewTestStore(t)
	engine := store.NewBackupEngine(s, store.NewNopLogger(), FixedClock())
	return engine, s
}
