// Package content resolves blog slugs to documents.
//
// A slug goes through Validate -> CheckExists -> Import. A slug that fails
// validation or has no document yields ErrNotFound without touching the
// importer. Import runs exactly once and its error is returned as-is.
package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var (
	// ErrNotFound means no document exists for the slug
	ErrNotFound = errors.New("content not found")

	// ErrInvalidSlug is wrapped together with ErrNotFound for slugs outside [a-zA-Z0-9_-]+
	ErrInvalidSlug = errors.New("invalid slug")
)

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// maxSlugLen keeps path segments well below filesystem limits
const maxSlugLen = 128

// ValidateSlug rejects empty slugs and anything that could escape the content root
func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > maxSlugLen || !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

// Store answers existence checks and computes document locations
type Store interface {
	Exists(slug string) bool
	Locate(slug string) string
}

// Importer loads a located document
type Importer interface {
	Import(ctx context.Context, slug, location string) (*Document, error)
}

// ImporterFunc adapts a function to Importer
type ImporterFunc func(ctx context.Context, slug, location string) (*Document, error)

func (f ImporterFunc) Import(ctx context.Context, slug, location string) (*Document, error) {
	return f(ctx, slug, location)
}

// FileStore addresses documents as {Root}/{slug}/{FileName}
type FileStore struct {
	Root     string
	FileName string
}

// NewFileStore creates a store rooted at root
func NewFileStore(root, fileName string) *FileStore {
	return &FileStore{Root: root, FileName: fileName}
}

// Locate returns the path of the document for slug
func (fs *FileStore) Locate(slug string) string {
	return filepath.Join(fs.Root, slug, fs.FileName)
}

// Exists reports whether a regular file exists at Locate(slug).
// Any stat error, permission errors included, counts as absent.
func (fs *FileStore) Exists(slug string) bool {
	info, err := os.Stat(fs.Locate(slug))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Loader resolves slugs to documents
type Loader struct {
	store    Store
	importer Importer
}

// NewLoader creates a loader over store and importer
func NewLoader(store Store, importer Importer) *Loader {
	return &Loader{store: store, importer: importer}
}

// Load returns the document for slug, ErrNotFound, or the importer's error unchanged
func (l *Loader) Load(ctx context.Context, slug string) (*Document, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !l.store.Exists(slug) {
		return nil, ErrNotFound
	}
	return l.importer.Import(ctx, slug, l.store.Locate(slug))
}
