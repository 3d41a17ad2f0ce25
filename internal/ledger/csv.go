package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"

	certmail "github.com/alnah/go-certmail"
	"github.com/alnah/go-certmail/internal/fileutil"
)

// CSV is a ledger backed by a local CSV file with a header row. Every
// write rewrites the file atomically, so a crash never leaves it torn.
type CSV struct {
	path    string
	opts    options
	header  header
	records [][]string // data rows, header excluded
}

// NewCSV creates a ledger for the file at path. Nothing is read until ReadAll.
func NewCSV(path string, opts ...Option) *CSV {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &CSV{path: path, opts: o}
}

// ReadAll reads the file, appending the status column when missing.
func (c *CSV) ReadAll(_ context.Context) ([]certmail.Row, error) {
	data, err := os.ReadFile(c.path) // #nosec G304 -- ledger path is user-provided
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.path, err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.path, err)
	}

	if len(all) == 0 {
		c.header = header{}
		c.records = nil
	} else {
		c.header = parseHeader(all[0])
		c.records = all[1:]
	}

	if c.header.index(c.opts.statusColumn) < 0 {
		c.header = append(c.header, c.opts.statusColumn)
		if err := c.flush(); err != nil {
			return nil, fmt.Errorf("adding %q column: %w", c.opts.statusColumn, err)
		}
	}

	rows := make([]certmail.Row, len(c.records))
	for i, cells := range c.records {
		rows[i] = c.header.row(i+1, cells)
	}
	return rows, nil
}

// WriteCell sets one cell of a data row (1-based) and rewrites the file.
func (c *CSV) WriteCell(_ context.Context, row int, column, value string) error {
	if c.header == nil {
		return ErrNotLoaded
	}
	if row < 1 || row > len(c.records) {
		return fmt.Errorf("%w: %d (have %d rows)", ErrRowOutOfRange, row, len(c.records))
	}
	col, err := c.header.column(column)
	if err != nil {
		return err
	}

	cells := c.records[row-1]
	for len(cells) <= col {
		cells = append(cells, "")
	}
	previous := cells[col]
	cells[col] = value
	c.records[row-1] = cells

	if err := c.flush(); err != nil {
		c.records[row-1][col] = previous
		return err
	}
	return nil
}

func (c *CSV) flush() error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(c.header); err != nil {
		return err
	}
	if err := w.WriteAll(c.records); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(c.path, buf.Bytes())
}

// Compile-time interface check.
var _ certmail.RecordSource = (*CSV)(nil)
