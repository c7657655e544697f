package kv

import (
	"fmt"
	"path/filepath"

	"liftbox/internal/config"
	"liftbox/internal/store"
)

// storeFileName is the SQLite database file inside the data directory.
const storeFileName = "liftbox.db"

// NewBackendFromConfig creates a store.Backend based on the store config type.
func NewBackendFromConfig(cfg config.StoreConfig) (store.Backend, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		return NewSQLiteBackend(filepath.Join(cfg.DataDir, storeFileName))
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
