package vault

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGetArchive(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	tests := []struct {
		name    string
		archive string
		content string
	}{
		{"small archive", "liftbox-2024-01-15.zip", "zip bytes"},
		{"empty archive", "empty.zip", ""},
		{"large archive", "big.zip", strings.Repeat("x", 100000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.content)
			if err := vault.PutArchive(tt.archive, r, int64(len(tt.content))); err != nil {
				t.Fatalf("PutArchive() error = %v", err)
			}

			var buf bytes.Buffer
			if err := vault.GetArchive(tt.archive, &buf); err != nil {
				t.Fatalf("GetArchive() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("GetArchive() returned %d bytes, want %d matching bytes", len(got), len(tt.content))
			}
		})
	}
}

func TestMemoryVault_SizeMismatch(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	err := vault.PutArchive("a.zip", strings.NewReader("12345"), 10)
	if err == nil {
		t.Error("PutArchive() accepted a size mismatch")
	}
}

func TestMemoryVault_GetMissingArchive(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	var buf bytes.Buffer
	if err := vault.GetArchive("missing.zip", &buf); err == nil {
		t.Error("GetArchive() succeeded for a missing archive")
	}
}

func TestMemoryVault_ListArchives(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	for _, name := range []string{"c.zip", "a.zip", "b.zip"} {
		if err := vault.PutArchive(name, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("PutArchive(%s) error = %v", name, err)
		}
	}

	names, err := vault.ListArchives()
	if err != nil {
		t.Fatalf("ListArchives() error = %v", err)
	}
	if want := []string{"a.zip", "b.zip", "c.zip"}; !reflect.DeepEqual(names, want) {
		t.Errorf("ListArchives() = %v, want %v", names, want)
	}
}

func TestMemoryVault_ValidateSetup(t *testing.T) {
	vault := NewMemoryVault("test-vault")
	if err := vault.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}
