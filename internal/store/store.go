package store

import (
	"errors"
	"fmt"
	"sort"
)

// ErrStorageUnavailable marks write failures of the underlying medium
// (disk full, corruption). Callers of Put and StorePhoto must see these;
// read-side decode problems degrade to "absent" instead.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store is the collection store: typed access to the fixed set of named
// boxes plus the photo blob box. Values are JSON-capable structures
// (maps, lists, strings, numbers, booleans, null); they are serialized
// to their canonical JSON form on Put and decoded back on Get, so reads
// return independent copies and never alias the stored representation.
type Store struct {
	backend Backend
	logger  Logger
}

// New creates a Store over the given backend.
func New(backend Backend, logger Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Put writes value under key in the named collection. The value is
// serialized to canonical JSON before it is written, so an immediate Get
// returns exactly what Put stored. Numbers round-trip as float64, per
// encoding/json.
func (s *Store) Put(collection, key string, value any) error {
	box := ResolveBox(collection)
	raw, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("encoding value for %s/%s: %w", box, key, err)
	}
	return s.putRaw(box, normalizeKey(box, key), raw)
}

// Get returns the value previously stored under key, or ok=false if the
// key was never set or deleted. A stored value that fails to decode as
// JSON is reported as absent and logged; read-side corruption never
// propagates as an error to Get callers.
func (s *Store) Get(collection, key string) (any, bool) {
	box := ResolveBox(collection)
	raw, ok, err := s.backend.Get(box, normalizeKey(box, key))
	if err != nil {
		s.logger.Warn("read failed", "box", box, "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	value, err := decodeValue(raw)
	if err != nil {
		s.logger.Warn("stored value is not valid JSON", "box", box, "key", key, "error", err)
		return nil, false
	}
	return value, true
}

// Delete removes the entry. Deleting an absent key is not an error.
func (s *Store) Delete(collection, key string) error {
	box := ResolveBox(collection)
	return s.backend.Delete(box, normalizeKey(box, key))
}

// Keys returns all currently-present keys in the collection, sorted.
// For case-insensitive collections the normalized (lower-case) forms
// are returned.
func (s *Store) Keys(collection string) ([]string, error) {
	keys, err := s.backend.Keys(ResolveBox(collection))
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Contains reports whether the collection has an entry under key.
func (s *Store) Contains(collection, key string) (bool, error) {
	box := ResolveBox(collection)
	return s.backend.Has(box, normalizeKey(box, key))
}

// Len returns the number of entries in the collection.
func (s *Store) Len(collection string) (int, error) {
	return s.backend.Len(ResolveBox(collection))
}

// Clear removes every entry from the collection.
func (s *Store) Clear(collection string) error {
	return s.backend.Clear(ResolveBox(collection))
}

// ClearAll removes every entry from every collection.
func (s *Store) ClearAll() error {
	return s.backend.ClearAll()
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// BoxStats holds per-collection counts for Stats.
type BoxStats struct {
	Box     string
	Entries int
}

// Stats returns entry counts for every known collection and the decoded
// photo storage estimate.
func (s *Store) Stats() ([]BoxStats, int64, error) {
	stats := make([]BoxStats, 0, len(Boxes))
	for _, box := range Boxes {
		n, err := s.backend.Len(box)
		if err != nil {
			return nil, 0, fmt.Errorf("counting %s: %w", box, err)
		}
		stats = append(stats, BoxStats{Box: box, Entries: n})
	}
	photoBytes, err := s.EstimatePhotoStorageBytes()
	if err != nil {
		return nil, 0, err
	}
	return stats, photoBytes, nil
}

// putRaw writes an already-encoded value. The key must already be
// normalized. Write failures surface as ErrStorageUnavailable.
func (s *Store) putRaw(box, key string, raw []byte) error {
	if err := s.backend.Put(box, key, raw); err != nil {
		return fmt.Errorf("%w: writing %s/%s: %v", ErrStorageUnavailable, box, key, err)
	}
	return nil
}

// getRaw reads the stored encoded form without decoding it. Used by the
// backup engine, which needs to distinguish "truly absent" from
// "present but corrupt".
func (s *Store) getRaw(box, key string) ([]byte, bool, error) {
	return s.backend.Get(box, key)
}

// exportBox materializes a box's full contents as raw entries, keyed by
// the stored (normalized) key.
func (s *Store) exportBox(box string) (map[string][]byte, error) {
	keys, err := s.backend.Keys(box)
	if err != nil {
		return nil, fmt.Errorf("listing %s keys: %w", box, err)
	}

	entries := make(map[string][]byte, len(keys))
	for _, key := range keys {
		raw, ok, err := s.backend.Get(box, key)
		if err != nil {
			return nil, fmt.Errorf("reading %s/%s: %w", box, key, err)
		}
		if !ok {
			// Deleted between Keys and Get; a backup is not a
			// transactional snapshot.
			continue
		}
		entries[key] = raw
	}
	return entries, nil
}
