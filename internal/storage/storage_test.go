package storage

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	loc   string
	err   error
	names []string
}

func (f *fakeStore) Put(_ context.Context, name string, _ []byte) (string, error) {
	f.names = append(f.names, name)
	return f.loc, f.err
}

func TestNewFanout_NoStores(t *testing.T) {
	t.Parallel()

	if _, err := NewFanout(); !errors.Is(err, ErrNoDestinations) {
		t.Errorf("NewFanout() error = %v, want ErrNoDestinations", err)
	}
}

func TestFanout_Put(t *testing.T) {
	t.Parallel()

	t.Run("writes everywhere and reports the primary", func(t *testing.T) {
		t.Parallel()

		local := &fakeStore{loc: "output/Alice.pdf"}
		archive := &fakeStore{loc: "s3://certs/Alice.pdf"}
		f, err := NewFanout(local, archive)
		if err != nil {
			t.Fatalf("NewFanout() error = %v", err)
		}

		loc, err := f.Put(context.Background(), "Alice.pdf", []byte("%PDF"))
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if loc != "output/Alice.pdf" {
			t.Errorf("Put() = %q, want primary location", loc)
		}
		if len(local.names) != 1 || len(archive.names) != 1 {
			t.Errorf("writes = %d local, %d archive, want 1 each", len(local.names), len(archive.names))
		}
	})

	t.Run("archive failure fails the put", func(t *testing.T) {
		t.Parallel()

		f, err := NewFanout(&fakeStore{loc: "a"}, &fakeStore{err: ErrAccessDenied})
		if err != nil {
			t.Fatalf("NewFanout() error = %v", err)
		}
		if _, err := f.Put(context.Background(), "x.pdf", nil); !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Put() error = %v, want ErrAccessDenied", err)
		}
	})

	t.Run("primary failure skips archives", func(t *testing.T) {
		t.Parallel()

		archive := &fakeStore{}
		f, err := NewFanout(&fakeStore{err: ErrUploadFailed}, archive)
		if err != nil {
			t.Fatalf("NewFanout() error = %v", err)
		}
		if _, err := f.Put(context.Background(), "x.pdf", nil); !errors.Is(err, ErrUploadFailed) {
			t.Errorf("Put() error = %v, want ErrUploadFailed", err)
		}
		if len(archive.names) != 0 {
			t.Error("archive should not be written after a primary failure")
		}
	})
}
