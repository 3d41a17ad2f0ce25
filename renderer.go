package certmail

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	fpdi "github.com/phpdave11/gofpdf/contrib/gofpdi"

	"github.com/alnah/go-certmail/internal/fileutil"
)

// ContentTypePDF is the MIME type of rendered certificates.
const ContentTypePDF = "application/pdf"

// pdfCreator is written into the document info dictionary.
const pdfCreator = "go-certmail"

// Artifact is a rendered certificate for one participant.
type Artifact struct {
	FileName string // derived from the participant name, e.g. "Ada_Lovelace.pdf"
	Data     []byte
	Location string // where the store persisted it
}

// ArtifactStore persists rendered certificates. Put overwrites any
// previous artifact with the same name.
type ArtifactStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// Layout holds the boxes of a certificate template.
type Layout struct {
	Name  Box
	Event Box
	Date  *Box // optional issue date line
}

// Validate checks every box of the layout.
func (l Layout) Validate() error {
	if err := l.Name.Validate(); err != nil {
		return fmt.Errorf("name box: %w", err)
	}
	if err := l.Event.Validate(); err != nil {
		return fmt.Errorf("event box: %w", err)
	}
	if l.Date != nil {
		if err := l.Date.Validate(); err != nil {
			return fmt.Errorf("date box: %w", err)
		}
	}
	return nil
}

// Renderer composes certificates from an immutable template.
type Renderer struct {
	tpl       *Template
	font      *Font
	layout    Layout
	store     ArtifactStore
	issueDate string
	color     [3]int
	now       func() time.Time
}

// NewRenderer creates a Renderer. The template, font and layout are shared
// read-only across renders.
func NewRenderer(tpl *Template, font *Font, layout Layout, store ArtifactStore, opts ...RendererOption) (*Renderer, error) {
	if tpl == nil {
		return nil, ErrTemplateEmpty
	}
	if font == nil {
		return nil, fmt.Errorf("%w: no font registered", ErrFontLoad)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		tpl:    tpl,
		font:   font,
		layout: layout,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render produces and stores the certificate for name and event.
func (r *Renderer) Render(ctx context.Context, name, event string) (*Artifact, error) {
	data, err := r.compose(name, event)
	if err != nil {
		return nil, err
	}

	fileName := fileutil.SafeFileName(name) + ".pdf"
	loc, err := r.store.Put(ctx, fileName, data)
	if err != nil {
		return nil, &RenderError{Name: name, Stage: StageWrite, Err: err}
	}

	return &Artifact{FileName: fileName, Data: data, Location: loc}, nil
}

// compose builds the document in memory. Every call starts from a new
// document and a new importer, so no page state survives between records.
func (r *Renderer) compose(name, event string) (out []byte, err error) {
	stage := StageFont
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = &RenderError{Name: name, Stage: stage, Err: fmt.Errorf("%v", rec)}
		}
	}()

	w, h := r.tpl.Width(), r.tpl.Height()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(r.now())
	pdf.SetCreator(pdfCreator, false)
	pdf.SetTitle(name, true)
	pdf.SetSubject(event, true)

	translate := r.registerFont(pdf)
	if pdf.Err() {
		return nil, &RenderError{Name: name, Stage: StageFont, Err: pdf.Error()}
	}

	stage = StageTemplate
	pdf.AddPage()
	imp := fpdi.NewImporter()
	rs := r.tpl.reader()
	tplID := imp.ImportPageFromStream(pdf, &rs, 1, templateBox)
	imp.UseImportedTemplate(pdf, tplID, 0, 0, w, h)
	if pdf.Err() {
		return nil, &RenderError{Name: name, Stage: StageTemplate, Err: pdf.Error()}
	}

	stage = StageDraw
	m := &fpdfMeasurer{pdf: pdf, family: r.font.Family(), translate: translate}
	pdf.SetTextColor(r.color[0], r.color[1], r.color[2])
	r.drawText(pdf, m, name, r.layout.Name)
	r.drawText(pdf, m, event, r.layout.Event)
	if r.layout.Date != nil && r.issueDate != "" {
		r.drawText(pdf, m, r.issueDate, *r.layout.Date)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Name: name, Stage: StageDraw, Err: err}
	}
	return buf.Bytes(), nil
}

// registerFont makes the font usable in pdf and returns the text encoder
// matching it. Core fonts use cp1252; TrueType fonts take UTF-8 as is.
func (r *Renderer) registerFont(pdf *gofpdf.Fpdf) func(string) string {
	if r.font.IsCore() {
		return pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddUTF8FontFromBytes(r.font.Family(), "", r.font.data)
	return func(s string) string { return s }
}

func (r *Renderer) drawText(pdf *gofpdf.Fpdf, m *fpdfMeasurer, text string, box Box) {
	p := Fit(text, box, m, 0, r.tpl.Height())
	pdf.SetFont(m.family, "", p.Size)
	// gofpdf measures y from the top of the page.
	pdf.Text(p.X, r.tpl.Height()-p.Y, m.translate(text))
}

// fpdfMeasurer measures text with the metrics of the document's font.
type fpdfMeasurer struct {
	pdf       *gofpdf.Fpdf
	family    string
	translate func(string) string
}

func (m *fpdfMeasurer) StringWidth(text string, size float64) float64 {
	m.pdf.SetFont(m.family, "", size)
	return m.pdf.GetStringWidth(m.translate(text))
}

func (m *fpdfMeasurer) CapHeight(size float64) float64 {
	desc := m.pdf.GetFontDesc(m.family, "")
	return float64(desc.CapHeight) / capHeightUnitsPerEm * size
}
