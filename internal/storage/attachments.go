package storage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNoFile rejects empty uploads and unusable filenames.
	ErrNoFile = errors.New("no file provided")
	// ErrDisallowedType rejects extensions outside the allow-list.
	ErrDisallowedType = errors.New("file type not allowed")
	// ErrStorage wraps filesystem failures while persisting an upload.
	ErrStorage = errors.New("storage failure")
)

// allowedExtensions is the fixed upload allow-list.
var allowedExtensions = map[string]struct{}{
	".txt":  {},
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// StoredFile describes a successfully persisted upload.
type StoredFile struct {
	Name string
	Path string
}

// Store persists uploaded attachments under a single directory. Incoming
// filenames are untrusted; they are sanitized so no input can address a
// path outside the directory.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns the store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save validates and writes one upload. Content lands in a temp file
// first and is renamed into place, so a failed write never leaves a
// partial file under the final name.
func (s *Store) Save(originalName string, content []byte) (StoredFile, error) {
	if len(content) == 0 {
		return StoredFile{}, ErrNoFile
	}

	name := SanitizeFilename(originalName)
	if name == "" {
		return StoredFile{}, ErrNoFile
	}

	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return StoredFile{}, fmt.Errorf("%w: %q", ErrDisallowedType, ext)
	}

	dest := filepath.Join(s.dir, name)
	// The destination must stay inside the upload dir.
	if !strings.HasPrefix(filepath.Clean(dest), filepath.Clean(s.dir)+string(os.PathSeparator)) {
		return StoredFile{}, fmt.Errorf("%w: destination escapes upload dir", ErrStorage)
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return StoredFile{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return StoredFile{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return StoredFile{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return StoredFile{Name: name, Path: dest}, nil
}

// SanitizeFilename reduces an untrusted filename to a safe basename:
// path separators are dropped, remaining characters are restricted to
// [A-Za-z0-9._-], and leading/trailing dots and underscores stripped.
// Returns "" when nothing usable remains.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return ""
	}
	return name
}
