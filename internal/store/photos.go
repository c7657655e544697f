package store

import (
	"fmt"
	"sort"
	"strings"
)

// BlobURIPrefix is the fixed scheme prefix for photos held in the local
// blob store. Consumers use it to tell local blobs apart from remote
// URLs and filesystem paths without the store knowing those schemes.
const BlobURIPrefix = "hive://photo/"

// StorePhoto stores raw photo bytes under the given ID, overwriting any
// prior blob with the same ID, and returns the blob URI for it.
func (s *Store) StorePhoto(id string, data []byte) (string, error) {
	if err := s.backend.Put(BoxPhotoStorage, id, data); err != nil {
		return "", fmt.Errorf("%w: storing photo %s: %v", ErrStorageUnavailable, id, err)
	}
	return BlobURIPrefix + id, nil
}

// GetPhotoBytes returns the photo's bytes, or ok=false if no blob is
// stored under the ID.
func (s *Store) GetPhotoBytes(id string) ([]byte, bool) {
	data, ok, err := s.backend.Get(BoxPhotoStorage, id)
	if err != nil {
		s.logger.Warn("photo read failed", "id", id, "error", err)
		return nil, false
	}
	return data, ok
}

// DeletePhoto removes the blob. Deleting an absent ID is not an error.
func (s *Store) DeletePhoto(id string) error {
	return s.backend.Delete(BoxPhotoStorage, id)
}

// PhotoExists reports whether a blob is stored under the ID.
func (s *Store) PhotoExists(id string) (bool, error) {
	return s.backend.Has(BoxPhotoStorage, id)
}

// ListPhotoIDs returns the IDs of all stored photos, sorted.
func (s *Store) ListPhotoIDs() ([]string, error) {
	ids, err := s.backend.Keys(BoxPhotoStorage)
	if err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// EstimatePhotoStorageBytes sums the decoded sizes of all stored photos.
// This is the logical size, not the on-disk encoded size.
func (s *Store) EstimatePhotoStorageBytes() (int64, error) {
	ids, err := s.backend.Keys(BoxPhotoStorage)
	if err != nil {
		return 0, fmt.Errorf("listing photos: %w", err)
	}

	var total int64
	for _, id := range ids {
		data, ok, err := s.backend.Get(BoxPhotoStorage, id)
		if err != nil {
			return 0, fmt.Errorf("reading photo %s: %w", id, err)
		}
		if ok {
			total += int64(len(data))
		}
	}
	return total, nil
}

// IsBlobURI reports whether s is a local photo blob URI. Any other
// scheme (http, filesystem path, other blob schemes) returns false.
func IsBlobURI(s string) bool {
	return strings.HasPrefix(s, BlobURIPrefix) && len(s) > len(BlobURIPrefix)
}

// ParseBlobID extracts the photo ID from a blob URI. Non-matching
// strings return ok=false without error.
func ParseBlobID(uri string) (string, bool) {
	if !IsBlobURI(uri) {
		return "", false
	}
	return uri[len(BlobURIPrefix):], true
}
