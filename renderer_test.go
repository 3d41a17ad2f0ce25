package certmail

// Notes:
// - Renderer: rendered with the Helvetica core font so no font file is
//   needed. We check that outputs are valid single-page PDFs with the
//   template's geometry and the participant's document title, and that
//   consecutive renders do not share state.
// - Text placement on the page is covered by the Fit tests; we do not
//   extract text from rendered PDFs.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func testLayout() Layout {
	return Layout{
		Name:  Box{X: 260, Y: 305, Width: 235, MaxSize: 26, MinSize: DefaultMinFontSize, Baseline: DefaultBaseline},
		Event: Box{X: 56, Y: 349, Width: 165, MaxSize: 20, MinSize: DefaultMinFontSize, Baseline: DefaultBaseline},
	}
}

func newTestRenderer(t *testing.T, store ArtifactStore, opts ...RendererOption) *Renderer {
	t.Helper()
	font, err := LoadFont("Helvetica", "")
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	opts = append([]RendererOption{WithRenderClock(fixedClock)}, opts...)
	r, err := NewRenderer(mustTemplate(t), font, testLayout(), store, opts...)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r
}

// utf16be encodes s the way PDF text strings carry UTF-8 metadata.
func utf16be(s string) []byte {
	var out []byte
	for _, r := range s {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

// ---------------------------------------------------------------------------
// TestNewRenderer - Construction checks
// ---------------------------------------------------------------------------

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	font, err := LoadFont("Helvetica", "")
	if err != nil {
		t.Fatal(err)
	}
	tpl := mustTemplate(t)

	t.Run("nil template", func(t *testing.T) {
		t.Parallel()

		if _, err := NewRenderer(nil, font, testLayout(), newMemStore()); !errors.Is(err, ErrTemplateEmpty) {
			t.Errorf("NewRenderer() = %v, want ErrTemplateEmpty", err)
		}
	})

	t.Run("nil font", func(t *testing.T) {
		t.Parallel()

		if _, err := NewRenderer(tpl, nil, testLayout(), newMemStore()); !errors.Is(err, ErrFontLoad) {
			t.Errorf("NewRenderer() = %v, want ErrFontLoad", err)
		}
	})

	t.Run("invalid box", func(t *testing.T) {
		t.Parallel()

		layout := testLayout()
		layout.Event.MaxSize = 0
		if _, err := NewRenderer(tpl, font, layout, newMemStore()); !errors.Is(err, ErrInvalidBox) {
			t.Errorf("NewRenderer() = %v, want ErrInvalidBox", err)
		}
	})

	t.Run("invalid date box", func(t *testing.T) {
		t.Parallel()

		layout := testLayout()
		layout.Date = &Box{Width: -5, MaxSize: 12}
		if _, err := NewRenderer(tpl, font, layout, newMemStore()); !errors.Is(err, ErrInvalidBox) {
			t.Errorf("NewRenderer() = %v, want ErrInvalidBox", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRenderer_Render - Producing artifacts
// ---------------------------------------------------------------------------

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("valid single page certificate", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		r := newTestRenderer(t, store)

		a, err := r.Render(context.Background(), "Alice Smith", "Robotics Workshop")
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if a.FileName != "Alice_Smith.pdf" {
			t.Errorf("FileName = %q, want Alice_Smith.pdf", a.FileName)
		}
		if a.Location != "mem://Alice_Smith.pdf" {
			t.Errorf("Location = %q", a.Location)
		}
		if !bytes.HasPrefix(a.Data, []byte("%PDF-")) {
			t.Fatalf("output is not a PDF: %q", a.Data[:min(len(a.Data), 16)])
		}
		if !bytes.Equal(store.files[a.FileName], a.Data) {
			t.Error("stored bytes differ from the artifact")
		}

		out, err := ParseTemplate(a.Data)
		if err != nil {
			t.Fatalf("rendered PDF does not parse: %v", err)
		}
		if out.Pages() != 1 {
			t.Errorf("rendered Pages() = %d, want 1", out.Pages())
		}
		if math.Abs(out.Width()-r.tpl.Width()) > 0.01 || math.Abs(out.Height()-r.tpl.Height()) > 0.01 {
			t.Errorf("rendered size %.2fx%.2f, want template %.2fx%.2f",
				out.Width(), out.Height(), r.tpl.Width(), r.tpl.Height())
		}
	})

	t.Run("consecutive renders are independent", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		r := newTestRenderer(t, store)
		ctx := context.Background()

		first, err := r.Render(ctx, "Alice", "EventX")
		if err != nil {
			t.Fatalf("Render(Alice) error = %v", err)
		}
		second, err := r.Render(ctx, "Bob", "EventY")
		if err != nil {
			t.Fatalf("Render(Bob) error = %v", err)
		}

		if !bytes.Contains(second.Data, utf16be("Bob")) {
			t.Error("second certificate is not titled Bob")
		}
		if bytes.Contains(second.Data, utf16be("Alice")) || bytes.Contains(second.Data, utf16be("EventX")) {
			t.Error("second certificate carries data from the first")
		}

		// Reopen Alice's stored artifact after Bob's render.
		alice := store.files["Alice.pdf"]
		if !bytes.Equal(alice, first.Data) {
			t.Error("Alice's stored artifact changed after rendering Bob")
		}
		if !bytes.Contains(alice, utf16be("Alice")) || !bytes.Contains(alice, utf16be("EventX")) {
			t.Error("Alice's stored artifact lost Alice/EventX")
		}

		out, err := ParseTemplate(second.Data)
		if err != nil {
			t.Fatalf("second PDF does not parse: %v", err)
		}
		if out.Pages() != 1 {
			t.Errorf("second certificate has %d pages, want 1", out.Pages())
		}
	})

	t.Run("long name still renders", func(t *testing.T) {
		t.Parallel()

		r := newTestRenderer(t, newMemStore())
		name := "Maximiliana Alexandrina Konstantinopoulou-Wolfeschlegelsteinhausen"
		if _, err := r.Render(context.Background(), name, "Quiz"); err != nil {
			t.Errorf("Render() error = %v", err)
		}
	})

	t.Run("issue date box", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		font, _ := LoadFont("Helvetica", "")
		layout := testLayout()
		layout.Date = &Box{X: 260, Y: 400, Width: 235, MaxSize: 12, MinSize: DefaultMinFontSize}
		r, err := NewRenderer(mustTemplate(t), font, layout, store,
			WithIssueDate("March 14, 2026"), WithTextColor(0x1a, 0x2b, 0x3c))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.Render(context.Background(), "Ada", "Quiz"); err != nil {
			t.Errorf("Render() error = %v", err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.err = errBoom
		r := newTestRenderer(t, store)

		_, err := r.Render(context.Background(), "Ada", "Quiz")
		if !errors.Is(err, ErrRender) || !errors.Is(err, errBoom) {
			t.Fatalf("Render() = %v, want ErrRender wrapping the store error", err)
		}
		var re *RenderError
		if !errors.As(err, &re) || re.Stage != StageWrite || re.Name != "Ada" {
			t.Errorf("RenderError = %+v, want stage %q for Ada", re, StageWrite)
		}
	})

	t.Run("invalid font file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "broken.ttf")
		if err := os.WriteFile(path, []byte("\x00\x01\x00\x00not a font"), 0o600); err != nil {
			t.Fatal(err)
		}
		font, err := LoadFont("Broken", path)
		if err != nil {
			t.Fatalf("LoadFont() error = %v", err)
		}
		r, err := NewRenderer(mustTemplate(t), font, testLayout(), newMemStore())
		if err != nil {
			t.Fatal(err)
		}

		if _, err := r.Render(context.Background(), "Ada", "Quiz"); !errors.Is(err, ErrRender) {
			t.Errorf("Render() = %v, want ErrRender", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRenderError - Error formatting
// ---------------------------------------------------------------------------

func TestRenderError(t *testing.T) {
	t.Parallel()

	err := &RenderError{Name: "Ada", Stage: StageTemplate, Err: errBoom}
	want := `rendering certificate for "Ada" (template): boom`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrRender) || !errors.Is(err, errBoom) {
		t.Error("RenderError should match ErrRender and its cause")
	}
}
