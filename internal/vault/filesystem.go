package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"liftbox/internal/store"
)

// FileSystemVault is a filesystem-based implementation of the
// ArchiveVault interface. It stores archives as flat files under
// <root>/archives/, written atomically (temp file + rename) so a
// crashed export never leaves a truncated archive behind.
type FileSystemVault struct {
	name        string
	root        string
	archivesDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	archivesDir := filepath.Join(root, "archives")
	if err := os.MkdirAll(archivesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archives directory: %w", err)
	}

	return &FileSystemVault{
		name:        name,
		root:        root,
		archivesDir: archivesDir,
	}, nil
}

// PutArchive stores an archive by name, overwriting any previous one.
func (v *FileSystemVault) PutArchive(name string, r io.Reader, size int64) error {
	if err := validateArchiveName(name); err != nil {
		return err
	}
	return v.writeFile(filepath.Join(v.archivesDir, name), r, size)
}

// GetArchive retrieves an archive by name and writes it to w.
func (v *FileSystemVault) GetArchive(name string, w io.Writer) error {
	if err := validateArchiveName(name); err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(v.archivesDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("archive not found: %s", name)
		}
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	return nil
}

// ListArchives returns the names of stored archives, sorted.
func (v *FileSystemVault) ListArchives() ([]string, error) {
	dirEntries, err := os.ReadDir(v.archivesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	var names []string
	for _, e := range dirEntries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}

	info, err = os.Stat(v.archivesDir)
	if err != nil {
		return fmt.Errorf("vault directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault path is not a directory: %s", v.archivesDir)
	}

	return nil
}

// validateArchiveName rejects names that would escape the archives
// directory.
func validateArchiveName(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid archive name: %q", name)
	}
	return nil
}

// writeFile writes data from r to destPath using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemVault implements store.ArchiveVault
var _ store.ArchiveVault = (*FileSystemVault)(nil)
