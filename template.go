package certmail

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/phpdave11/gofpdi"
)

// templateBox is the page boundary used for geometry and import.
const templateBox = "/MediaBox"

// Template is the immutable base certificate. It holds the source PDF bytes
// and the geometry of its first page; renders import their own copy of the
// page from these bytes and never share page state.
type Template struct {
	data   []byte
	pages  int
	width  float64
	height float64
}

// LoadTemplate reads a PDF template from path.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- template path comes from config
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}
	return ParseTemplate(data)
}

// ParseTemplate builds a Template from PDF bytes. The slice is copied.
func ParseTemplate(data []byte) (tpl *Template, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrTemplateLoad)
	}

	// gofpdi panics on malformed documents.
	defer func() {
		if r := recover(); r != nil {
			tpl = nil
			err = fmt.Errorf("%w: %v", ErrTemplateLoad, r)
		}
	}()

	owned := bytes.Clone(data)
	rs := io.ReadSeeker(bytes.NewReader(owned))
	imp := gofpdi.NewImporter()
	imp.SetSourceStream(&rs)

	sizes := imp.GetPageSizes()
	if len(sizes) == 0 {
		return nil, ErrTemplateEmpty
	}
	first, ok := sizes[1][templateBox]
	if !ok {
		return nil, fmt.Errorf("%w: first page has no %s", ErrTemplateLoad, templateBox)
	}

	w, h := first["w"], first["h"]
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: invalid page size %.2fx%.2f", ErrTemplateLoad, w, h)
	}

	return &Template{data: owned, pages: len(sizes), width: w, height: h}, nil
}

// Width returns the first page width in points.
func (t *Template) Width() float64 { return t.width }

// Height returns the first page height in points.
func (t *Template) Height() float64 { return t.height }

// Pages returns the number of pages in the source document.
func (t *Template) Pages() int { return t.pages }

// reader returns a fresh read-only stream over the template bytes.
func (t *Template) reader() io.ReadSeeker {
	return bytes.NewReader(t.data)
}
