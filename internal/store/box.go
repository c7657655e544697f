package store

import "strings"

// Box names for the fixed set of collections owned by the store.
const (
	BoxPrograms        = "programs"
	BoxCustomExercises = "customExercises"
	BoxUserPreferences = "userPreferences"
	BoxExerciseHistory = "exerciseHistory"
	BoxSyncMetadata    = "syncMetadata"
	BoxGeneralStorage  = "generalStorage"
	BoxPhotoStorage    = "photoStorage"
	BoxWorkoutSessions = "workoutSessions"
)

// Boxes lists every known collection in the order export visits them.
var Boxes = []string{
	BoxPrograms,
	BoxCustomExercises,
	BoxUserPreferences,
	BoxExerciseHistory,
	BoxSyncMetadata,
	BoxGeneralStorage,
	BoxPhotoStorage,
	BoxWorkoutSessions,
}

// IsKnownBox reports whether name is one of the fixed collections.
func IsKnownBox(name string) bool {
	switch name {
	case BoxPrograms, BoxCustomExercises, BoxUserPreferences,
		BoxExerciseHistory, BoxSyncMetadata, BoxGeneralStorage,
		BoxPhotoStorage, BoxWorkoutSessions:
		return true
	}
	return false
}

// ResolveBox maps a collection name to the box that actually stores it.
// Unrecognized names fall back to the general storage box instead of
// failing; this is the single dispatch point for that behavior.
func ResolveBox(name string) string {
	if IsKnownBox(name) {
		return name
	}
	return BoxGeneralStorage
}

// caseInsensitiveKeys reports whether the box treats its keys as
// case-insensitive identifiers. Keys in these boxes are normalized to
// lower-case on every write and lookup.
func caseInsensitiveKeys(box string) bool {
	return box == BoxCustomExercises || box == BoxUserPreferences
}

// normalizeKey returns the storage form of key for the given box.
func normalizeKey(box, key string) string {
	if caseInsensitiveKeys(box) {
		return strings.ToLower(key)
	}
	return key
}
