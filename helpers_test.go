package certmail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/phpdave11/gofpdf"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// templatePDF builds an A4 landscape PDF with the given number of pages.
func templatePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 24)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Text(72, 72, fmt.Sprintf("Certificate of Participation, page %d", i))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("building template PDF: %v", err)
	}
	return buf.Bytes()
}

func mustTemplate(t *testing.T) *Template {
	t.Helper()
	tpl, err := ParseTemplate(templatePDF(t, 1))
	if err != nil {
		t.Fatalf("ParseTemplate() error = %v", err)
	}
	return tpl
}

// memStore keeps artifacts in memory.
type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemStore() *memStore { return &memStore{files: make(map[string][]byte)} }

func (s *memStore) Put(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.files[name] = bytes.Clone(data)
	return "mem://" + name, nil
}

// ---------------------------------------------------------------------------
// Processor fakes
// ---------------------------------------------------------------------------

type cellWrite struct {
	Row   int
	Value string
}

// memLedger is an in-memory RecordSource with the default columns.
type memLedger struct {
	rows    []Row
	writes  []cellWrite
	readErr error
	// failOn returns a write error for the given row and value.
	failOn func(row int, value string) error
}

func newMemLedger(records ...[3]string) *memLedger {
	l := &memLedger{}
	for i, r := range records {
		l.rows = append(l.rows, Row{
			Index: i + 1,
			Values: map[string]string{
				DefaultNameColumn:  r[0],
				DefaultEventColumn: r[1],
				DefaultEmailColumn: r[2],
			},
		})
	}
	return l
}

func (l *memLedger) withStatus(row int, status string) *memLedger {
	l.rows[row-1].Values[DefaultStatusColumn] = status
	return l
}

func (l *memLedger) ReadAll(context.Context) ([]Row, error) {
	if l.readErr != nil {
		return nil, l.readErr
	}
	out := make([]Row, len(l.rows))
	for i, r := range l.rows {
		values := make(map[string]string, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}
		out[i] = Row{Index: r.Index, Values: values}
	}
	return out, nil
}

func (l *memLedger) WriteCell(_ context.Context, row int, column, value string) error {
	if l.failOn != nil {
		if err := l.failOn(row, value); err != nil {
			return err
		}
	}
	for i := range l.rows {
		if l.rows[i].Index == row {
			l.rows[i].Values[column] = value
			l.writes = append(l.writes, cellWrite{Row: row, Value: value})
			return nil
		}
	}
	return fmt.Errorf("row %d out of range", row)
}

func (l *memLedger) status(row int) string {
	return l.rows[row-1].Values[DefaultStatusColumn]
}

func (l *memLedger) writesFor(row int) []string {
	var out []string
	for _, w := range l.writes {
		if w.Row == row {
			out = append(out, w.Value)
		}
	}
	return out
}

var errBoom = errors.New("boom")

// fakeRenderer records calls and fails or panics for configured names.
type fakeRenderer struct {
	calls  []string
	fail   map[string]bool
	panics map[string]bool
}

func (r *fakeRenderer) Render(_ context.Context, name, event string) (*Artifact, error) {
	r.calls = append(r.calls, name+"/"+event)
	if r.panics[name] {
		panic("font table corrupted")
	}
	if r.fail[name] {
		return nil, &RenderError{Name: name, Stage: StageDraw, Err: errBoom}
	}
	file := name + ".pdf"
	return &Artifact{FileName: file, Data: []byte("%PDF-" + name + "/" + event), Location: "mem://" + file}, nil
}

type sentMail struct {
	To, Name, Event string
	Data            string
}

// fakeNotifier records deliveries and fails or panics for configured addresses.
type fakeNotifier struct {
	sent   []sentMail
	fail   map[string]error
	panics map[string]bool
	onSend func(to string)
}

func (n *fakeNotifier) Send(_ context.Context, to, name, event string, a *Artifact) error {
	if n.onSend != nil {
		n.onSend(to)
	}
	if n.panics[to] {
		panic("connection reset")
	}
	if err := n.fail[to]; err != nil {
		return err
	}
	n.sent = append(n.sent, sentMail{To: to, Name: name, Event: event, Data: string(a.Data)})
	return nil
}
