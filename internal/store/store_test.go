package store_test

import (
	"reflect"
	"testing"
	"time"

	"liftbox/internal/store"
	"liftbox/internal/testutil"
)

func TestStore_PutAndGet(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{
			name:  "string value",
			value: "hello",
			want:  "hello",
		},
		{
			name:  "number value",
			value: 42,
			want:  float64(42),
		},
		{
			name:  "boolean value",
			value: true,
			want:  true,
		},
		{
			name:  "null value",
			value: nil,
			want:  nil,
		},
		{
			name:  "object value",
			value: map[string]any{"name": "bench press", "sets": 3},
			want:  map[string]any{"name": "bench press", "sets": float64(3)},
		},
		{
			name:  "array value",
			value: []any{"a", 1, true},
			want:  []any{"a", float64(1), true},
		},
		{
			name: "nested object",
			value: map[string]any{
				"exercises": []any{
					map[string]any{"name": "squat", "reps": []any{5, 5, 5}},
				},
			},
			want: map[string]any{
				"exercises": []any{
					map[string]any{"name": "squat", "reps": []any{float64(5), float64(5), float64(5)}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := testutil.NewTestStore(t)

			if err := s.Put(store.BoxPrograms, "k", tt.value); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			got, ok := s.Get(store.BoxPrograms, "k")
			if !ok {
				t.Fatal("Get() returned absent for stored key")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	s, _ := testutil.NewTestStore(t)

	if _, ok := s.Get(store.BoxPrograms, "missing"); ok {
		t.Error("Get() reported presence for a key never stored")
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	s, _ := testutil.NewTestStore(t)

	if err := s.Put(store.BoxPrograms, "k", "first"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(store.BoxPrograms, "k", "second"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := s.Get(store.BoxPrograms, "k")
	if !ok || got != "second" {
		t.Errorf("Get() = %v, %v, want %q", got, ok, "second")
	}
}

func TestStore_UnknownCollectionFallsBack(t *testing.T) {
	s, _ := testutil.NewTestStore(t)

	if err := s.Put("noSuchBox", "k", "v"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// The entry is reachable both through the unknown name and through
	// the fallback collection it actually landed in.
	if got, ok := s.Get("noSuchBox", "k"); !ok || got != "v" {
		t.Errorf("Get(noSuchBox) = %v, %v, want %q", got, ok, "v")
	}
	if got, ok := s.Get(store.BoxGeneralStorage, "k"); !ok || got != "v" {
		t.Errorf("Get(generalStorage) = %v, %v, want %q", got, ok, "v")
	}
}

func TestStore_CaseInsensitiveKeys(t *testing.T) {
	tests := []struct {
		box         string
		insensitive bool
	}{
		{store.BoxCustomExercises, true},
		{store.BoxUserPreferences, true},
		{store.BoxPrograms, false},
		{store.BoxGeneralStorage, false},
	}

	for _, tt := range tests {
		t.Run(tt.box, func(t *testing.T) {
			s, _ := testutil.NewTestStore(t)

			if err := s.Put(tt.box, "EX1", "upper"); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			_, ok := s.Get(tt.box, "ex1")
			if ok != tt.insensitive {
				t.Errorf("Get(%s, ex1) present = %v, want %v", tt.box, ok, tt.insensitive)
			}

			if tt.insensitive {
				// Writing the lowercase form overwrites the uppercase one.
				if err := s.Put(tt.box, "ex1", "lower"); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				n, err := s.Len(tt.box)
				if err != nil {
					t.Fatalf("Len() error = %v", err)
				}
				if n != 1 {
					t.Errorf("Len() = %d, want 1", n)
				}
				if got, _ := s.Get(tt.box, "EX1"); got != "lower" {
					t.Errorf("Get(EX1) = %v, want %q", got, "lower")
				}
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	t.Run("removes stored key", func(t *testing.T) {
		s, _ := testutil.NewTestStore(t)

		if err := s.Put(store.BoxPrograms, "k", "v"); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if err := s.Delete(store.BoxPrograms, "k"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, ok := s.Get(store.BoxPrograms, "k"); ok {
			t.Error("Get() reported presence after Delete()")
		}
	})

	t.Run("absent key is a no-op", func(t *testing.T) {
		s, _ := testutil.NewTestStore(t)

		if err := s.Delete(store.BoxPrograms, "never-stored"); err != nil {
			t.Errorf("Delete() error = %v, want nil", err)
		}
	})
}

func TestStore_Keys(t *testing.T) {
	s, _ := testutil.NewTestStore(t)

	for _, k := range []string{"zeta", "alpha", "mid"} {
		if err := s.Put(store.BoxPrograms, k, "v"); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	keys, err := s.Keys(store.BoxPrograms)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}

	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys() = %v, want %v", keys, want)
	}
}

func TestStore_ContainsAndLen(t *testing.T) {
	s, _ := testutil.NewTestStore(t)

	if err := s.Put(store.BoxExerciseHistory, "h1", map[string]any{"reps": 5}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	ok, err := s.Contains(store.BoxExerciseHistory, "h1")
	if err != nil || !ok {
		t.Errorf("Contains(h1) = %v, %v, want true, nil", ok, err)
	}
	ok, err = s.Contains(store.BoxExerciseHistory, "h2")
	if err != nil || ok {
		t.Errorf("Contains(h2) = %v, %v, want false, nil", ok, err)
	}

	n, err := s.Len(store.BoxExerciseHistory)
	if err != nil || n != 1 {
		t.Errorf("Len() = %d, %v, want 1, nil", n, err)
	}
	n, err = s.Len(store.BoxPrograms)
	if err != nil || n != 0 {
		t.Errorf("Len(empty) = %d, %v, want 0, nil", n, err)
	}
}

func TestStore_ClearAndClearAll(t *testing.T) {
	s, _ := testutil.NewTestStore(t)

	s.Put(store.BoxPrograms, "p1", "a")
	s.Put(store.BoxPrograms, "p2", "b")
	s.Put(store.BoxGeneralStorage, "g1", "c")

	if err := s.Clear(store.BoxPrograms); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n, _ := s.Len(store.BoxPrograms); n != 0 {
		t.Errorf("Len(programs) after Clear = %d, want 0", n)
	}
	if n, _ := s.Len(store.BoxGeneralStorage); n != 1 {
		t.Errorf("Len(generalStorage) after Clear = %d, want 1", n)
	}

	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if n, _ := s.Len(store.BoxGeneralStorage); n != 0 {
		t.Errorf("Len(generalStorage) after ClearAll = %d, want 0", n)
	}
}

func TestStore_GetCorruptedValue(t *testing.T) {
	s, backend := testutil.NewTestStore(t)

	// Plant bytes behind the store's back that are not valid JSON.
	if err := backend.Put(store.BoxPrograms, "bad", []byte("{not json")); err != nil {
		t.Fatalf("backend.Put() error = %v", err)
	}

	if _, ok := s.Get(store.BoxPrograms, "bad"); ok {
		t.Error("Get() reported presence for an undecodable value")
	}

	// The raw entry is still there; the read did not destroy it.
	if has, _ := backend.Has(store.BoxPrograms, "bad"); !has {
		t.Error("corrupted entry was removed by a read")
	}
}

func TestStore_Stats(t *testing.T) {
	s, _ := testutil.NewTestStore(t)

	s.Put(store.BoxPrograms, "p1", "a")
	s.Put(store.BoxPrograms, "p2", "b")
	if _, err := s.StorePhoto("ph1", []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("StorePhoto() error = %v", err)
	}

	stats, photoBytes, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if len(stats) != len(store.Boxes) {
		t.Fatalf("Stats() returned %d boxes, want %d", len(stats), len(store.Boxes))
	}

	counts := make(map[string]int)
	for _, st := range stats {
		counts[st.Box] = st.Entries
	}
	if counts[store.BoxPrograms] != 2 {
		t.Errorf("programs entries = %d, want 2", counts[store.BoxPrograms])
	}
	if counts[store.BoxPhotoStorage] != 1 {
		t.Errorf("photoStorage entries = %d, want 1", counts[store.BoxPhotoStorage])
	}
	if photoBytes != 4 {
		t.Errorf("photo bytes = %d, want 4", photoBytes)
	}
}

func TestStore_CacheTimestamps(t *testing.T) {
	t.Run("set and get round-trip", func(t *testing.T) {
		s, _ := testutil.NewTestStore(t)

		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		if err := s.SetCacheTimestamp("exerciseList", at); err != nil {
			t.Fatalf("SetCacheTimestamp() error = %v", err)
		}

		got, ok := s.GetCacheTimestamp("exerciseList")
		if !ok {
			t.Fatal("GetCacheTimestamp() returned absent")
		}
		if !got.Equal(at) {
			t.Errorf("GetCacheTimestamp() = %v, want %v", got, at)
		}
	})

	t.Run("missing timestamp is absent", func(t *testing.T) {
		s, _ := testutil.NewTestStore(t)

		if _, ok := s.GetCacheTimestamp("never-set"); ok {
			t.Error("GetCacheTimestamp() reported presence for unset cache type")
		}
	})

	t.Run("clear removes timestamp", func(t *testing.T) {
		s, _ := testutil.NewTestStore(t)

		s.SetCacheTimestamp("exerciseList", time.Now())
		if err := s.ClearCacheTimestamp("exerciseList"); err != nil {
			t.Fatalf("ClearCacheTimestamp() error = %v", err)
		}
		if _, ok := s.GetCacheTimestamp("exerciseList"); ok {
			t.Error("GetCacheTimestamp() reported presence after clear")
		}
	})
}

func TestResolveBox(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"programs", store.BoxPrograms},
		{"workoutSessions", store.BoxWorkoutSessions},
		{"somethingElse", store.BoxGeneralStorage},
		{"", store.BoxGeneralStorage},
		{"Programs", store.BoxGeneralStorage}, // collection names are case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.ResolveBox(tt.name); got != tt.want {
				t.Errorf("ResolveBox(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
