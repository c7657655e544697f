package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
)

// The snapshot codec converts one box's full contents to and from a
// single JSON document: an object mapping key -> value. Values in the
// store are already canonical JSON, so they are embedded directly with
// no double-encoding; anything that is not valid JSON is carried as a
// JSON string so no data is dropped on the way through a backup.

// Entry is one parsed member of a box snapshot document.
type Entry struct {
	Key string
	// Value is the decoded structure, used for conflict-timestamp
	// inspection. For members that could not be interpreted it is the
	// raw text as a plain string.
	Value any
	// Raw is the member's exact document form, used for
	// exact-fidelity re-storage.
	Raw json.RawMessage
}

// PhotoEntry is one photo blob parsed from a photo box document.
type PhotoEntry struct {
	ID   string
	Data []byte
	// RawPreserved marks entries whose value was not valid base64;
	// Data then holds the original string bytes so the blob is
	// preserved rather than dropped.
	RawPreserved bool
}

// EncodeBox serializes a box's raw entries to a snapshot document.
// Entries that are not valid JSON (corruption, or values that were
// never JSON) are embedded verbatim as JSON strings.
func EncodeBox(entries map[string][]byte) ([]byte, error) {
	doc := make(map[string]json.RawMessage, len(entries))
	for key, raw := range entries {
		if json.Valid(raw) {
			doc[key] = json.RawMessage(raw)
			continue
		}
		quoted, err := json.Marshal(string(raw))
		if err != nil {
			return nil, fmt.Errorf("quoting entry %q: %w", key, err)
		}
		doc[key] = quoted
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeBox parses a snapshot document back into entries, sorted by key.
// A document that is not a JSON object fails as a whole; that is the
// caller's per-collection error. Individual members always survive:
// one that cannot be decoded is preserved as an opaque string.
func DecodeBox(data []byte) ([]Entry, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing snapshot document: %w", err)
	}

	entries := make([]Entry, 0, len(doc))
	for key, raw := range doc {
		entry := Entry{Key: key, Raw: raw}
		if err := json.Unmarshal(raw, &entry.Value); err != nil {
			entry.Value = string(raw)
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// EncodePhotoBox serializes photo blobs to a snapshot document mapping
// photo ID -> base64-encoded bytes.
func EncodePhotoBox(blobs map[string][]byte) ([]byte, error) {
	doc := make(map[string]string, len(blobs))
	for id, data := range blobs {
		doc[id] = base64.StdEncoding.EncodeToString(data)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding photo snapshot: %w", err)
	}
	return out, nil
}

// DecodePhotoBox parses a photo snapshot document, sorted by ID.
// Members that are not valid base64 are preserved verbatim with
// RawPreserved set rather than dropped.
func DecodePhotoBox(data []byte) ([]PhotoEntry, error) {
	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing photo snapshot document: %w", err)
	}

	entries := make([]PhotoEntry, 0, len(doc))
	for id, encoded := range doc {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			entries = append(entries, PhotoEntry{ID: id, Data: []byte(encoded), RawPreserved: true})
			continue
		}
		entries = append(entries, PhotoEntry{ID: id, Data: decoded})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}
