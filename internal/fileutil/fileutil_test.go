package fileutil_test

// Notes:
// - WriteFileAtomic: the CreateTemp, Write and Rename error branches are not
//   tested because forcing those failures is platform-specific. We verify the
//   happy path, overwrite behavior and the empty path guard.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-certmail/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestSafeFileName - Participant name to file name
// ---------------------------------------------------------------------------

func TestSafeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single space", "Ada Lovelace", "Ada_Lovelace"},
		{"each space replaced", "Ada  Lovelace", "Ada__Lovelace"},
		{"tabs and newlines", "Ada\tLove\nlace", "Ada_Love_lace"},
		{"surrounding whitespace trimmed", "  Grace Hopper  ", "Grace_Hopper"},
		{"accents kept", "José Álvarez", "José_Álvarez"},
		{"decomposed accent normalized", "Jose\u0301", "José"},
		{"forward slashes dropped", "a/b/c", "abc"},
		{"backslashes dropped", `a\b`, "ab"},
		{"path traversal neutralized", "../etc/passwd", "etcpasswd"},
		{"reserved characters dropped", `what?*:<>|"`, "what"},
		{"control characters dropped", "Bob\x00\x07", "Bob"},
		{"empty falls back", "", "certificate"},
		{"only dots falls back", "...", "certificate"},
		{"only separators falls back", "///", "certificate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.SafeFileName(tt.input); got != tt.want {
				t.Errorf("SafeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSafeFileName_Deterministic(t *testing.T) {
	t.Parallel()

	a := fileutil.SafeFileName("Marie Curie")
	b := fileutil.SafeFileName("Marie Curie")
	if a != b {
		t.Errorf("SafeFileName not deterministic: %q != %q", a, b)
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Atomic file writes
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "dir", "out.pdf")
		if err := fileutil.WriteFileAtomic(path, []byte("%PDF-1.3")); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(got) != "%PDF-1.3" {
			t.Errorf("content = %q, want %q", got, "%PDF-1.3")
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.pdf")
		if err := fileutil.WriteFileAtomic(path, []byte("first")); err != nil {
			t.Fatalf("first write error = %v", err)
		}
		if err := fileutil.WriteFileAtomic(path, []byte("second")); err != nil {
			t.Fatalf("second write error = %v", err)
		}

		got, _ := os.ReadFile(path)
		if string(got) != "second" {
			t.Errorf("content = %q, want %q", got, "second")
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := fileutil.WriteFileAtomic(filepath.Join(dir, "a.pdf"), []byte("x")); err != nil {
			t.Fatalf("WriteFileAtomic() error = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("directory has %d entries, want 1", len(entries))
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if err := fileutil.WriteFileAtomic("", []byte("x")); !errors.Is(err, fileutil.ErrEmptyPath) {
			t.Errorf("WriteFileAtomic(\"\") error = %v, want %v", err, fileutil.ErrEmptyPath)
		}
	})
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirWritable
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Errorf("FileExists(%q) = false, want true", file)
	}
	if fileutil.FileExists(dir) {
		t.Errorf("FileExists(dir) = true, want false")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing")) {
		t.Errorf("FileExists(missing) = true, want false")
	}
}

func TestDirWritable(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "output")
	if err := fileutil.DirWritable(dir); err != nil {
		t.Fatalf("DirWritable() error = %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("probe file left behind: %d entries", len(entries))
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"certmail", false},
		{"./certmail.yaml", true},
		{"/etc/certmail.yaml", true},
		{`C:\certmail.yaml`, true},
	}
	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.input); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
