package certmail

import (
	"fmt"
	"math"
)

// Layout defaults in points.
const (
	DefaultMinFontSize  = 8.0
	DefaultBaseline     = 8.0 // lift applied to the baseline above the box anchor
	fontSizeStep        = 1.0
	defaultCapHeightEm  = 0.7
	pointsPerInch       = 72.0
	capHeightUnitsPerEm = 1000.0
)

// Box is a fixed region of the template page where one line of text is
// fitted and centered. Coordinates are in points, measured from the top-left
// corner of the page, which is how boxes are read off a template.
type Box struct {
	X        float64 // left edge (or center point when Width is zero)
	Y        float64 // distance from the top of the page to the box line
	Width    float64 // zero means unconstrained: no shrinking, centered on X
	Height   float64 // when set, text is centered vertically inside the box
	MaxSize  float64 // starting font size
	MinSize  float64 // font size floor; text may overflow at this size
	Baseline float64 // baseline lift above Y, ignored when Height is set
}

// Validate checks the box geometry.
func (b Box) Validate() error {
	if b.Width < 0 {
		return fmt.Errorf("%w: width must not be negative, got %.2f", ErrInvalidBox, b.Width)
	}
	if b.Height < 0 {
		return fmt.Errorf("%w: height must not be negative, got %.2f", ErrInvalidBox, b.Height)
	}
	if b.MaxSize <= 0 {
		return fmt.Errorf("%w: max font size must be positive, got %.2f", ErrInvalidBox, b.MaxSize)
	}
	if b.MinSize < 0 || b.MinSize > b.MaxSize {
		return fmt.Errorf("%w: min font size must be between 0 and %.2f, got %.2f", ErrInvalidBox, b.MaxSize, b.MinSize)
	}
	return nil
}

// Inches converts a box expressed in inches to points. Font sizes and the
// baseline lift are always points and are left untouched.
func (b Box) Inches() Box {
	b.X *= pointsPerInch
	b.Y *= pointsPerInch
	b.Width *= pointsPerInch
	b.Height *= pointsPerInch
	return b
}

// Measurer reports the rendered width of text at a font size, in points.
type Measurer interface {
	StringWidth(text string, size float64) float64
}

// CapHeighter is implemented by measurers that know the font's cap height.
// It is used for vertical centering.
type CapHeighter interface {
	CapHeight(size float64) float64
}

// Placement is where and how large a line of text is drawn. Y is in PDF
// space: distance from the bottom of the page to the baseline.
type Placement struct {
	Size  float64
	X     float64
	Y     float64
	Width float64 // measured width at Size
}

// Fit computes the font size and baseline position of text inside box.
// The size starts at hint (or box.MaxSize when hint is zero) and shrinks in
// one point steps while the text is wider than the box, stopping at
// box.MinSize. Fit never fails: text that does not fit at the minimum size
// is placed anyway and overflows the box symmetrically.
func Fit(text string, box Box, m Measurer, hint, pageHeight float64) Placement {
	size := startSize(box, hint)

	width := measure(m, text, size)
	if box.Width > 0 {
		for width > box.Width && size > box.MinSize {
			size = math.Max(size-fontSizeStep, box.MinSize)
			width = measure(m, text, size)
		}
	}

	p := Placement{Size: size, Width: width}
	if box.Width > 0 {
		p.X = box.X + (box.Width-width)/2
	} else {
		p.X = box.X - width/2
	}

	if box.Height > 0 {
		p.Y = pageHeight - (box.Y + box.Height/2) - capHeight(m, size)/2
	} else {
		p.Y = pageHeight - box.Y + box.Baseline
	}
	return p
}

func startSize(box Box, hint float64) float64 {
	size := box.MaxSize
	if hint > 0 {
		size = hint
	}
	if box.MaxSize > 0 && size > box.MaxSize {
		size = box.MaxSize
	}
	if size < box.MinSize {
		size = box.MinSize
	}
	return size
}

func measure(m Measurer, text string, size float64) float64 {
	if text == "" {
		return 0
	}
	return m.StringWidth(text, size)
}

func capHeight(m Measurer, size float64) float64 {
	if ch, ok := m.(CapHeighter); ok {
		if h := ch.CapHeight(size); h > 0 {
			return h
		}
	}
	return defaultCapHeightEm * size
}
