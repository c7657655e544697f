package store

// Backend provides raw key/value persistence for the collection store.
// A backend knows nothing about JSON, key normalization, or the box
// dispatch rules; it stores opaque byte values under (box, key) pairs.
//
// Implementations must be safe for concurrent use, and writes to a key
// must be fully visible to reads issued after the write completes.
// Mutations on distinct boxes must not serialize against each other
// (per-box locking or an underlying store that already provides it).
// Returned byte slices are copies owned by the caller.
type Backend interface {
	// Put stores value under key, creating the box on first use.
	Put(box, key string, value []byte) error

	// Get returns the stored value, or ok=false if the key was never
	// set or has been deleted.
	Get(box, key string) (value []byte, ok bool, err error)

	// Delete removes the entry. Deleting an absent key is not an error.
	Delete(box, key string) error

	// Keys returns every key currently present in the box.
	Keys(box string) ([]string, error)

	// Has reports whether the key is present.
	Has(box, key string) (bool, error)

	// Len returns the number of entries in the box.
	Len(box string) (int, error)

	// Clear removes every entry from the box.
	Clear(box string) error

	// ClearAll removes every entry from every box.
	ClearAll() error

	// Close releases the backend's resources.
	Close() error
}
