// Package ledger implements participant record sources: a Google Sheets
// spreadsheet and a local CSV file. Both expose rows keyed by header name
// and write single status cells back in place.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	certmail "github.com/alnah/go-certmail"
)

// Sentinel errors for ledger operations.
var (
	ErrCredentials   = errors.New("invalid Google credentials")
	ErrAccessDenied  = errors.New("spreadsheet not accessible")
	ErrUnknownColumn = errors.New("unknown column")
	ErrRowOutOfRange = errors.New("row out of range")
	ErrNotLoaded     = errors.New("ledger not read yet")
)

// Option configures a ledger.
type Option func(*options)

type options struct {
	statusColumn string
}

func defaultOptions() options {
	return options{statusColumn: certmail.DefaultStatusColumn}
}

// WithStatusColumn sets the status column created when absent.
func WithStatusColumn(name string) Option {
	return func(o *options) {
		if name != "" {
			o.statusColumn = name
		}
	}
}

// header is the first row of a ledger.
type header []string

func parseHeader(cells []string) header {
	h := make(header, len(cells))
	for i, c := range cells {
		h[i] = strings.TrimSpace(c)
	}
	if len(h) > 0 {
		h[0] = strings.TrimPrefix(h[0], "\ufeff")
	}
	return h
}

// index returns the 0-based position of a column, or -1.
func (h header) index(column string) int {
	for i, name := range h {
		if name == column {
			return i
		}
	}
	return -1
}

// row maps cells to column names. Short rows yield empty values.
func (h header) row(index int, cells []string) certmail.Row {
	values := make(map[string]string, len(h))
	for i, name := range h {
		if name == "" {
			continue
		}
		if i < len(cells) {
			values[name] = cells[i]
		} else {
			values[name] = ""
		}
	}
	return certmail.Row{Index: index, Values: values}
}

func (h header) column(column string) (int, error) {
	i := h.index(column)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return i, nil
}
