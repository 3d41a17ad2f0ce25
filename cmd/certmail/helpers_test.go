package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phpdave11/gofpdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and fixtures
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func fixedNowFunc() time.Time { return fixedNow }

// testEnv returns an Environment with captured output and a fixed
// process environment, so tests never read the real one.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	environ := make([]string, 0, len(vars))
	for k, v := range vars {
		environ = append(environ, k+"="+v)
	}
	env := &Environment{
		Now:     fixedNowFunc,
		Stdout:  &stdout,
		Stderr:  &stderr,
		Getenv:  func(k string) string { return vars[k] },
		Environ: func() []string { return environ },
	}
	return env, &stdout, &stderr
}

// writeTemplatePDF writes a blank landscape A4 page, the shape of the
// stock certificate.
func writeTemplatePDF(t *testing.T, dir string) string {
	t.Helper()
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetDrawColor(180, 140, 60)
	pdf.Rect(20, 20, 802, 555, "D")
	path := filepath.Join(dir, "Certificate.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("writing template: %v", err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}
