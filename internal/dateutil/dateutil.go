// Package dateutil resolves the issue date printed on certificates and
// offered to email templates.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when "auto" is given without a format.
const DefaultDateFormat = "MMMM D, YYYY"

// autoKeyword selects the run date instead of a literal value.
const autoKeyword = "auto"

// tokens maps format tokens to Go layout components, longest first so that
// "MMMM" wins over "MM".
var tokens = [...]struct{ token, layout string }{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named shortcuts for common formats.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Format renders t with a token format such as "DD MMMM YYYY". Text
// inside brackets is copied literally: "[Issued] D MMM".
func Format(format string, t time.Time) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var out strings.Builder
	for rest := format; rest != ""; {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			out.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		rest = writeToken(&out, rest, t)
	}
	return out.String(), nil
}

// writeToken consumes one token or literal byte from s.
func writeToken(out *strings.Builder, s string, t time.Time) string {
	for _, tok := range tokens {
		if strings.HasPrefix(s, tok.token) {
			out.WriteString(t.Format(tok.layout))
			return s[len(tok.token):]
		}
	}
	out.WriteByte(s[0])
	return s[1:]
}

// Resolve turns a configured date value into display text:
//   - "" stays empty (no date)
//   - "auto" formats t with DefaultDateFormat
//   - "auto:FORMAT" or "auto:preset" formats t with that format
//   - anything else is returned unchanged
func Resolve(value string, t time.Time) (string, error) {
	head, format, hasFormat := strings.Cut(value, ":")
	if !strings.EqualFold(head, autoKeyword) {
		return value, nil
	}

	if !hasFormat {
		format = DefaultDateFormat
	} else if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	}
	if preset, ok := Presets[strings.ToLower(format)]; ok {
		format = preset
	}

	return Format(format, t)
}
