package store

import "io"

// ArchiveVault is a named destination for exported backup archives.
// The store and backup engine never touch a vault; the app layer uses
// one to persist the archive bytes off the device (local directory,
// S3 bucket) and to fetch them back for import. Archives are opaque
// files to the vault; it never inspects their contents.
type ArchiveVault interface {
	// PutArchive stores an archive under the given file name,
	// overwriting any existing archive with that name.
	// size is the number of bytes that will be read from r.
	PutArchive(name string, r io.Reader, size int64) error

	// GetArchive retrieves an archive by name and writes it to w.
	GetArchive(name string, w io.Writer) error

	// ListArchives returns the names of all stored archives.
	ListArchives() ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly
	// configured.
	ValidateSetup() error
}
