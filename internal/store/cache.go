package store

import (
	"fmt"
	"time"
)

// Cache timestamps live in the general storage box. Higher-level
// cache-aside repositories use them to decide freshness; absence means
// the cache type was never refreshed.
const cacheTimestampKeyPrefix = "cacheTimestamp_"

// SetCacheTimestamp records the last-refreshed instant for a cache type.
func (s *Store) SetCacheTimestamp(cacheType string, at time.Time) error {
	key := cacheTimestampKeyPrefix + cacheType
	return s.Put(BoxGeneralStorage, key, at.UTC().Format(time.RFC3339Nano))
}

// GetCacheTimestamp returns the last-refreshed instant for a cache type,
// or ok=false if it was never refreshed (or the stored value is not a
// parseable timestamp).
func (s *Store) GetCacheTimestamp(cacheType string) (time.Time, bool) {
	value, ok := s.Get(BoxGeneralStorage, cacheTimestampKeyPrefix+cacheType)
	if !ok {
		return time.Time{}, false
	}

	text, ok := value.(string)
	if !ok {
		s.logger.Warn("cache timestamp has unexpected shape", "cacheType", cacheType, "value", fmt.Sprintf("%T", value))
		return time.Time{}, false
	}

	at, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		s.logger.Warn("cache timestamp failed to parse", "cacheType", cacheType, "error", err)
		return time.Time{}, false
	}
	return at, true
}

// ClearCacheTimestamp removes the recorded instant for a cache type.
func (s *Store) ClearCacheTimestamp(cacheType string) error {
	return s.Delete(BoxGeneralStorage, cacheTimestampKeyPrefix+cacheType)
}
