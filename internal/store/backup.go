package store

import (
	"fmt"
	"sort"
	"time"

	"liftbox/internal/archive"
)

// conflictTimestampField is the recognized updated-at field inside an
// entry's structured value. The store does not enforce that domain
// payloads carry it; entries without one are treated as whole-value
// replacements on import.
const conflictTimestampField = "updatedAt"

// ImportResult summarizes one import operation. It is always returned,
// even when collections fail; failures live in Errors and
// TopLevelError, never in a separate error return.
type ImportResult struct {
	// Imported counts entries written into the store.
	Imported int
	// Skipped counts entries left untouched because the store already
	// held a strictly newer value.
	Skipped int
	// Errors holds one message per collection that could not be
	// processed. Empty on full success.
	Errors []string
	// TopLevelError is set only when the archive itself was unreadable;
	// no entries are written in that case.
	TopLevelError string
}

// BackupEngine orchestrates full-store export and import and owns the
// last-writer-wins conflict policy.
//
// Export and Import are long-running and synchronous; interactive
// callers run them on their own goroutine. Import acquires each box's
// lock per entry write, never for the whole operation, so reads are not
// starved during a large restore.
type BackupEngine struct {
	store  *Store
	logger Logger
	clock  Clock
}

// NewBackupEngine creates a BackupEngine over the given store.
func NewBackupEngine(store *Store, logger Logger, clock Clock) *BackupEngine {
	return &BackupEngine{
		store:  store,
		logger: logger,
		clock:  clock,
	}
}

// Export serializes every known collection into a single archive and
// returns its bytes. Every collection is always present in the archive,
// even when empty, so import can distinguish "present but empty" from
// "file missing". The caller persists the bytes; the engine retains
// nothing between calls.
func (e *BackupEngine) Export() ([]byte, error) {
	started := e.clock.Now()

	files := make(map[string][]byte, len(Boxes))
	for _, box := range Boxes {
		entries, err := e.store.exportBox(box)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", box, err)
		}

		var encoded []byte
		if box == BoxPhotoStorage {
			encoded, err = EncodePhotoBox(entries)
		} else {
			encoded, err = EncodeBox(entries)
		}
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", box, err)
		}
		files[archive.FileName(box)] = encoded
	}

	data, err := archive.Pack(files)
	if err != nil {
		return nil, fmt.Errorf("packing archive: %w", err)
	}

	e.logger.Info("export complete",
		"boxes", len(files),
		"bytes", len(data),
		"took", e.clock.Now().Sub(started).String(),
	)
	return data, nil
}

// Import restores an archive into the (possibly non-empty) store.
// Per-entry conflicts resolve last-writer-wins on the updatedAt
// timestamp: an existing entry that is strictly newer is kept and the
// incoming one skipped; everything else (no timestamps, incoming newer
// or equal, no existing entry) overwrites. Photos always overwrite.
// A collection whose document is unreadable is recorded as one error
// and the rest of the archive is still processed.
func (e *BackupEngine) Import(data []byte) *ImportResult {
	started := e.clock.Now()
	result := &ImportResult{}

	files, err := archive.Unpack(data)
	if err != nil {
		e.logger.Error("import aborted", "error", err)
		result.TopLevelError = err.Error()
		return result
	}

	// Deterministic processing order keeps error lists stable.
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		box, ok := archive.BoxName(name)
		if !ok || !IsKnownBox(box) {
			// From a newer app version or hand-edited; tolerated.
			e.logger.Debug("ignoring unknown archive file", "file", name)
			continue
		}

		if box == BoxPhotoStorage {
			e.importPhotos(files[name], result)
		} else {
			e.importBox(box, files[name], result)
		}
	}

	e.logger.Info("import complete",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"took", e.clock.Now().Sub(started).String(),
	)
	return result
}

// importBox restores one collection's entries, applying the conflict
// policy per entry.
func (e *BackupEngine) importBox(box string, data []byte, result *ImportResult) {
	entries, err := DecodeBox(data)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", box, err))
		e.logger.Warn("collection unreadable, skipping", "box", box, "error", err)
		return
	}

	for _, entry := range entries {
		key := normalizeKey(box, entry.Key)

		if e.existingIsNewer(box, key, entry.Value) {
			result.Skipped++
			e.logger.Debug("kept newer local entry", "box", box, "key", key)
			continue
		}

		if err := e.store.putRaw(box, key, entry.Raw); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: writing %q: %v", box, key, err))
			continue
		}
		result.Imported++
	}
}

// importPhotos restores photo blobs. Photos have no update semantics
// beyond existence, so they always overwrite.
func (e *BackupEngine) importPhotos(data []byte, result *ImportResult) {
	entries, err := DecodePhotoBox(data)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", BoxPhotoStorage, err))
		e.logger.Warn("photo collection unreadable, skipping", "error", err)
		return
	}

	for _, entry := range entries {
		if entry.RawPreserved {
			e.logger.Warn("photo entry is not valid base64, preserving raw bytes", "id", entry.ID)
		}
		if _, err := e.store.StorePhoto(entry.ID, entry.Data); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: writing %q: %v", BoxPhotoStorage, entry.ID, err))
			continue
		}
		result.Imported++
	}
}

// existingIsNewer reports whether the store already holds an entry under
// (box, key) whose conflict timestamp is strictly newer than the
// incoming value's. Missing timestamps on either side mean false: the
// archive is then the source of truth and overwrites.
func (e *BackupEngine) existingIsNewer(box, key string, incoming any) bool {
	incomingAt, ok := entryTimestamp(incoming)
	if !ok {
		return false
	}

	raw, present, err := e.store.getRaw(box, key)
	if err != nil || !present {
		return false
	}

	existing, err := decodeValue(raw)
	if err != nil {
		// Present but corrupt: let the incoming entry repair it.
		return false
	}

	existingAt, ok := entryTimestamp(existing)
	if !ok {
		return false
	}
	return existingAt.After(incomingAt)
}

// entryTimestamp extracts the conflict timestamp from a decoded value.
// Only structured objects with a parseable RFC3339 updatedAt string
// carry one; anything else makes no claim.
func entryTimestamp(value any) (time.Time, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		return time.Time{}, false
	}
	text, ok := obj[conflictTimestampField].(string)
	if !ok {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, text)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}
