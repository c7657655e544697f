package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestFSVault(t *testing.T) *FileSystemVault {
	t.Helper()

	v, err := NewFileSystemVault("test-vault", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	return v
}

func TestFileSystemVault_PutAndGetArchive(t *testing.T) {
	v := newTestFSVault(t)

	content := "zip bytes here"
	if err := v.PutArchive("backup.zip", strings.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("PutArchive() error = %v", err)
	}

	var buf bytes.Buffer
	if err := v.GetArchive("backup.zip", &buf); err != nil {
		t.Fatalf("GetArchive() error = %v", err)
	}
	if buf.String() != content {
		t.Errorf("GetArchive() = %q, want %q", buf.String(), content)
	}
}

func TestFileSystemVault_Overwrite(t *testing.T) {
	v := newTestFSVault(t)

	v.PutArchive("a.zip", strings.NewReader("first"), 5)
	if err := v.PutArchive("a.zip", strings.NewReader("second!"), 7); err != nil {
		t.Fatalf("PutArchive() error = %v", err)
	}

	var buf bytes.Buffer
	v.GetArchive("a.zip", &buf)
	if buf.String() != "second!" {
		t.Errorf("GetArchive() = %q, want second!", buf.String())
	}
}

func TestFileSystemVault_SizeMismatchLeavesNothing(t *testing.T) {
	v := newTestFSVault(t)

	err := v.PutArchive("a.zip", strings.NewReader("123"), 99)
	if err == nil {
		t.Fatal("PutArchive() accepted a size mismatch")
	}

	names, err := v.ListArchives()
	if err != nil {
		t.Fatalf("ListArchives() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListArchives() = %v, want empty after failed write", names)
	}
}

func TestFileSystemVault_RejectsEscapingNames(t *testing.T) {
	v := newTestFSVault(t)

	for _, name := range []string{"", "../escape.zip", "a/b.zip", "/abs.zip"} {
		if err := v.PutArchive(name, strings.NewReader("x"), 1); err == nil {
			t.Errorf("PutArchive(%q) accepted an invalid name", name)
		}
		var buf bytes.Buffer
		if err := v.GetArchive(name, &buf); err == nil {
			t.Errorf("GetArchive(%q) accepted an invalid name", name)
		}
	}
}

func TestFileSystemVault_GetMissingArchive(t *testing.T) {
	v := newTestFSVault(t)

	var buf bytes.Buffer
	if err := v.GetArchive("missing.zip", &buf); err == nil {
		t.Error("GetArchive() succeeded for a missing archive")
	}
}

func TestFileSystemVault_ListArchives(t *testing.T) {
	v := newTestFSVault(t)

	for _, name := range []string{"b.zip", "a.zip"} {
		if err := v.PutArchive(name, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("PutArchive(%s) error = %v", name, err)
		}
	}

	// A leftover temp file from a crashed write is not an archive.
	tmp := filepath.Join(v.archivesDir, ".tmp-12345")
	if err := os.WriteFile(tmp, []byte("partial"), 0644); err != nil {
		t.Fatalf("writing stray temp file: %v", err)
	}

	names, err := v.ListArchives()
	if err != nil {
		t.Fatalf("ListArchives() error = %v", err)
	}
	if want := []string{"a.zip", "b.zip"}; !reflect.DeepEqual(names, want) {
		t.Errorf("ListArchives() = %v, want %v", names, want)
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	t.Run("valid layout", func(t *testing.T) {
		v := newTestFSVault(t)
		if err := v.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("missing archives dir", func(t *testing.T) {
		v := newTestFSVault(t)
		os.RemoveAll(v.archivesDir)
		if err := v.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() passed with archives dir removed")
		}
	})
}
