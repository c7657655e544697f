// Package archive packs per-collection snapshot files into a single
// portable zip container and unpacks them again. The layout is flat:
// one file per collection named box_<collection>.json; photo blobs are
// embedded in the photo collection's own document, not as separate
// archive entries.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrInvalidArchive marks bytes that are not a valid archive container
// at all, as distinct from a per-collection decode error.
var ErrInvalidArchive = errors.New("invalid archive")

const (
	boxFilePrefix = "box_"
	boxFileSuffix = ".json"
)

// FileName returns the archive file name for a collection.
func FileName(box string) string {
	return boxFilePrefix + box + boxFileSuffix
}

// BoxName extracts the collection name from an archive file name.
// Returns ok=false for names that do not follow the box file layout.
func BoxName(fileName string) (string, bool) {
	if !strings.HasPrefix(fileName, boxFilePrefix) || !strings.HasSuffix(fileName, boxFileSuffix) {
		return "", false
	}
	box := fileName[len(boxFilePrefix) : len(fileName)-len(boxFileSuffix)]
	if box == "" {
		return "", false
	}
	return box, true
}

// Pack bundles named byte blocks into one archive. Entries are written
// in sorted name order so identical inputs produce identical layouts.
func Pack(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("creating archive entry %s: %w", name, err)
		}
		if _, err := w.Write(files[name]); err != nil {
			zw.Close()
			return nil, fmt.Errorf("writing archive entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack reads an archive back into named byte blocks. Bytes that are
// not a valid container fail with ErrInvalidArchive; file names the
// caller does not recognize are its concern, not Unpack's.
func Unpack(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening archive entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading archive entry %s: %w", f.Name, err)
		}
		files[f.Name] = content
	}
	return files, nil
}
