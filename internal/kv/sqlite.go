package kv

import (
	"database/sql"
	"errors"
	"fmt"

	"liftbox/internal/kv/migrations"
	"liftbox/internal/store"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteBackend implements the store.Backend interface over a single
// SQLite table: entries(box, key, value). SQLite serializes writes on
// its own, which satisfies the backend's per-key visibility contract.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens (and migrates) a SQLite-backed store.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating store schema: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with the
// appropriate PRAGMAs. Exported for tools and tests that need a
// properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; more than one pooled
	// connection would mean more than one database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// The store is single-process but multiple goroutines share the
	// connection pool; wait for locks instead of failing fast.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

func (s *SQLiteBackend) Put(box, key string, value []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO entries (box, key, value) VALUES (?, ?, ?) ON CONFLICT(box, key) DO UPDATE SET value = excluded.value",
		box, key, value,
	)
	if err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Get(box, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM entries WHERE box = ? AND key = ?", box, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading entry: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteBackend) Delete(box, key string) error {
	if _, err := s.db.Exec("DELETE FROM entries WHERE box = ? AND key = ?", box, key); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Keys(box string) ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM entries WHERE box = ?", box)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}

func (s *SQLiteBackend) Has(box, key string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM entries WHERE box = ? AND key = ?", box, key).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking entry: %w", err)
	}
	return true, nil
}

func (s *SQLiteBackend) Len(box string) (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries WHERE box = ?", box).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

func (s *SQLiteBackend) Clear(box string) error {
	if _, err := s.db.Exec("DELETE FROM entries WHERE box = ?", box); err != nil {
		return fmt.Errorf("clearing box: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) ClearAll() error {
	if _, err := s.db.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteBackend) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteBackend) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteBackend implements store.Backend
var _ store.Backend = (*SQLiteBackend)(nil)
