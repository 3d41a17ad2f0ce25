package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/fileutil"
)

// Dir stores artifacts as files in a local directory. A later artifact
// with the same name replaces the earlier one.
type Dir struct {
	path string
}

// NewDir creates the directory if needed.
func NewDir(path string) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty output directory", ErrInvalidConfig)
	}
	if err := os.MkdirAll(path, fileutil.DirPermissions); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Dir{path: path}, nil
}

// Put writes data to {dir}/{name} atomically and returns the file path.
func (d *Dir) Put(_ context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q is not a plain file name", ErrInvalidConfig, name)
	}
	target := filepath.Join(d.path, name)
	if err := fileutil.WriteFileAtomic(target, data); err != nil {
		return "", err
	}
	return target, nil
}

// Path returns the directory.
func (d *Dir) Path() string { return d.path }

// Compile-time interface check.
var _ certmail.ArtifactStore = (*Dir)(nil)
