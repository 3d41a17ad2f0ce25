// Package storage persists rendered certificates: to a local output
// directory, to an S3-compatible bucket, or to both at once.
package storage

import (
	"context"
	"errors"
	"fmt"

	certmail "github.com/alnah/go-certmail"
)

// Sentinel errors for storage operations.
var (
	ErrEmptyName      = errors.New("artifact name is empty")
	ErrInvalidConfig  = errors.New("invalid storage configuration")
	ErrUploadFailed   = errors.New("upload failed")
	ErrAccessDenied   = errors.New("access denied")
	ErrNoDestinations = errors.New("no storage destinations")
)

// Fanout writes each artifact to every store in order and reports the
// location from the first one. Any failure fails the whole Put, so an
// artifact is only mailed once it is stored everywhere it was configured.
type Fanout struct {
	stores []certmail.ArtifactStore
}

// NewFanout combines stores. The first store is the primary location.
func NewFanout(stores ...certmail.ArtifactStore) (*Fanout, error) {
	if len(stores) == 0 {
		return nil, ErrNoDestinations
	}
	return &Fanout{stores: stores}, nil
}

// Put implements certmail.ArtifactStore.
func (f *Fanout) Put(ctx context.Context, name string, data []byte) (string, error) {
	var primary string
	for i, s := range f.stores {
		loc, err := s.Put(ctx, name, data)
		if err != nil {
			return "", fmt.Errorf("destination %d: %w", i+1, err)
		}
		if i == 0 {
			primary = loc
		}
	}
	return primary, nil
}

// Compile-time interface check.
var _ certmail.ArtifactStore = (*Fanout)(nil)
