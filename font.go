package certmail

import (
	"fmt"
	"os"
	"strings"
)

// coreFonts are the PDF base fonts that need no font file.
var coreFonts = map[string]bool{
	"courier":   true,
	"helvetica": true,
	"arial":     true,
	"times":     true,
}

// Font is a registered font family. The font file is read once at startup
// and shared read-only by every render.
type Font struct {
	family string
	data   []byte // nil for core fonts
}

// LoadFont registers family from a TrueType file. An empty path selects one
// of the PDF core fonts (Helvetica, Arial, Times, Courier), which only cover
// the Latin-1 range.
func LoadFont(family, path string) (*Font, error) {
	if strings.TrimSpace(family) == "" {
		return nil, fmt.Errorf("%w: family name is empty", ErrFontLoad)
	}

	if path == "" {
		if !coreFonts[strings.ToLower(family)] {
			return nil, fmt.Errorf("%w: %q is not a core font and no font file was given", ErrFontLoad, family)
		}
		return &Font{family: family}, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- font path comes from config
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrFontLoad, path)
	}
	return &Font{family: family, data: data}, nil
}

// Family returns the registered family name.
func (f *Font) Family() string { return f.family }

// IsCore reports whether the font is a built-in PDF font.
func (f *Font) IsCore() bool { return f.data == nil }
