package store

import (
	"encoding/json"
	"fmt"
)

// encodeValue produces the canonical stored form of a JSON-capable value.
func encodeValue(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeValue parses a stored raw entry back into its JSON structure.
// Internal callers get the error so they can tell "present but corrupt"
// apart from "absent"; the public Get boundary collapses it to absent.
func decodeValue(raw []byte) (any, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decoding stored value: %w", err)
	}
	return value, nil
}
