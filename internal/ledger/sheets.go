package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	certmail "github.com/alnah/go-certmail"
)

// valueInputRaw stores values as typed, so "✅ SENT" is never parsed.
const valueInputRaw = "RAW"

// valuesAPI is the subset of the Sheets API the ledger uses.
type valuesAPI interface {
	get(ctx context.Context, rng string) ([][]any, error)
	update(ctx context.Context, rng string, values [][]any) error
	firstSheet(ctx context.Context) (string, error)
}

// Sheets is a ledger backed by one sheet of a Google spreadsheet.
// Record i lives on sheet row i+1, below the header.
type Sheets struct {
	api    valuesAPI
	sheet  string
	opts   options
	header header
}

// NewSheets connects to a spreadsheet with service account credentials.
// An empty sheet name selects the first sheet.
func NewSheets(ctx context.Context, spreadsheetID, sheet string, credentialsJSON []byte, opts ...Option) (*Sheets, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentials, err)
	}
	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return newSheets(&sheetsAPI{srv: srv, id: spreadsheetID}, sheet, opts...), nil
}

func newSheets(api valuesAPI, sheet string, opts ...Option) *Sheets {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Sheets{api: api, sheet: sheet, opts: o}
}

// ReadAll reads the header and every data row, appending the status
// column to the header when it is missing.
func (s *Sheets) ReadAll(ctx context.Context) ([]certmail.Row, error) {
	if s.sheet == "" {
		name, err := s.api.firstSheet(ctx)
		if err != nil {
			return nil, classify(err)
		}
		s.sheet = name
	}

	values, err := s.api.get(ctx, quoteSheet(s.sheet))
	if err != nil {
		return nil, classify(err)
	}
	if len(values) == 0 {
		s.header = header{}
		return nil, s.ensureStatusColumn(ctx)
	}

	s.header = parseHeader(cellStrings(values[0]))
	if err := s.ensureStatusColumn(ctx); err != nil {
		return nil, err
	}

	rows := make([]certmail.Row, 0, len(values)-1)
	for i, cells := range values[1:] {
		rows = append(rows, s.header.row(i+1, cellStrings(cells)))
	}
	return rows, nil
}

func (s *Sheets) ensureStatusColumn(ctx context.Context) error {
	if s.header.index(s.opts.statusColumn) >= 0 {
		return nil
	}
	cell := a1(s.sheet, len(s.header), 1)
	if err := s.api.update(ctx, cell, [][]any{{s.opts.statusColumn}}); err != nil {
		return fmt.Errorf("adding %q column: %w", s.opts.statusColumn, classify(err))
	}
	s.header = append(s.header, s.opts.statusColumn)
	return nil
}

// WriteCell writes one cell of a data row (1-based, header excluded).
func (s *Sheets) WriteCell(ctx context.Context, row int, column, value string) error {
	if s.header == nil {
		return ErrNotLoaded
	}
	if row < 1 {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	col, err := s.header.column(column)
	if err != nil {
		return err
	}
	if err := s.api.update(ctx, a1(s.sheet, col, row+1), [][]any{{value}}); err != nil {
		return classify(err)
	}
	return nil
}

// ServiceAccountEmail extracts client_email from service account JSON,
// for error hints. Returns "" when absent or unparsable.
func ServiceAccountEmail(credentialsJSON []byte) string {
	var key struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(credentialsJSON, &key); err != nil {
		return ""
	}
	return key.ClientEmail
}

// classify marks permission and lookup failures with ErrAccessDenied.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusForbidden || gerr.Code == http.StatusNotFound) {
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	return err
}

// quoteSheet quotes a sheet name for A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// a1 returns the A1 reference of a 0-based column and 1-based sheet row.
func a1(sheet string, col, row int) string {
	return quoteSheet(sheet) + "!" + columnLetters(col) + strconv.Itoa(row)
}

// columnLetters converts a 0-based column index to A, B, ..., Z, AA, ...
func columnLetters(col int) string {
	var b []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

func cellStrings(cells []any) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c != nil {
			out[i] = fmt.Sprint(c)
		}
	}
	return out
}

// sheetsAPI calls the real Sheets service.
type sheetsAPI struct {
	srv *sheets.Service
	id  string
}

func (a *sheetsAPI) get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := a.srv.Spreadsheets.Values.Get(a.id, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *sheetsAPI) update(ctx context.Context, rng string, values [][]any) error {
	_, err := a.srv.Spreadsheets.Values.Update(a.id, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	return err
}

func (a *sheetsAPI) firstSheet(ctx context.Context) (string, error) {
	ss, err := a.srv.Spreadsheets.Get(a.id).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", fmt.Errorf("%w: spreadsheet %s has no sheets", ErrAccessDenied, a.id)
	}
	return ss.Sheets[0].Properties.Title, nil
}

// Compile-time interface check.
var _ certmail.RecordSource = (*Sheets)(nil)
