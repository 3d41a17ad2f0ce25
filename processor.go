package certmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Row is one data row of the record source. Index is the 1-based position
// of the row among data rows and is stable for the duration of a run.
type Row struct {
	Index  int
	Values map[string]string
}

// RecordSource is the spreadsheet ledger. Implementations guarantee that
// the status column exists, appending it to the header when absent.
type RecordSource interface {
	ReadAll(ctx context.Context) ([]Row, error)
	WriteCell(ctx context.Context, row int, column, value string) error
}

// CertificateRenderer produces the artifact for one participant.
type CertificateRenderer interface {
	Render(ctx context.Context, name, event string) (*Artifact, error)
}

// Notifier delivers an artifact to one participant.
type Notifier interface {
	Send(ctx context.Context, to, name, event string, a *Artifact) error
}

// Compile-time interface implementation checks.
var (
	_ CertificateRenderer = (*Renderer)(nil)
	_ Notifier            = (*Mailer)(nil)
)

// Default column names, matching the registration form export.
const (
	DefaultNameColumn   = "Full Name"
	DefaultEventColumn  = "EVENT"
	DefaultEmailColumn  = "Email Address"
	DefaultStatusColumn = "Status"
)

// Columns maps record fields to spreadsheet column names.
type Columns struct {
	Name   string
	Event  string
	Email  string
	Status string
}

// DefaultColumns returns the default column names.
func DefaultColumns() Columns {
	return Columns{
		Name:   DefaultNameColumn,
		Event:  DefaultEventColumn,
		Email:  DefaultEmailColumn,
		Status: DefaultStatusColumn,
	}
}

func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Event == "" {
		c.Event = d.Event
	}
	if c.Email == "" {
		c.Email = d.Email
	}
	if c.Status == "" {
		c.Status = d.Status
	}
	return c
}

// Record is a participant read from the ledger.
type Record struct {
	Row       int
	FullName  string
	EventName string
	Email     string
	Status    Status
}

func (c Columns) record(r Row) Record {
	return Record{
		Row:       r.Index,
		FullName:  strings.TrimSpace(r.Values[c.Name]),
		EventName: strings.TrimSpace(r.Values[c.Event]),
		Email:     strings.TrimSpace(r.Values[c.Email]),
		Status:    ParseStatus(r.Values[c.Status]),
	}
}

// missingFields lists the required fields that are empty.
func (r Record) missingFields() []string {
	var missing []string
	if r.FullName == "" {
		missing = append(missing, "name")
	}
	if r.EventName == "" {
		missing = append(missing, "event")
	}
	if r.Email == "" {
		missing = append(missing, "email")
	}
	return missing
}

// Processor walks the ledger one record at a time, rendering and sending
// certificates and writing each status transition back before moving on.
type Processor struct {
	source   RecordSource
	renderer CertificateRenderer
	notifier Notifier
	columns  Columns
	logger   *slog.Logger
	now      func() time.Time
}

// NewProcessor creates a Processor.
func NewProcessor(source RecordSource, renderer CertificateRenderer, notifier Notifier, opts ...ProcessorOption) *Processor {
	p := &Processor{
		source:   source,
		renderer: renderer,
		notifier: notifier,
		columns:  DefaultColumns(),
		logger:   discardLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs every record in source order. Per-record failures are
// recorded in the ledger and in the report; only a failure to read the
// records at all is returned as an error.
//
// Cancellation is checked between records. A record already started runs
// to its final status write, then Process returns the partial report with
// an error matching ErrInterrupted.
func (p *Processor) Process(ctx context.Context) (*Report, error) {
	rows, err := p.source.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceRead, err)
	}

	report := &Report{Outcomes: make([]Outcome, 0, len(rows))}
	for i, row := range rows {
		if ctx.Err() != nil {
			report.Remaining = len(rows) - i
			return report, fmt.Errorf("%w: %d records not processed: %w", ErrInterrupted, report.Remaining, context.Cause(ctx))
		}
		out := p.processRecord(context.WithoutCancel(ctx), p.columns.record(row))
		p.logOutcome(ctx, out)
		report.Outcomes = append(report.Outcomes, out)
	}
	return report, nil
}

// processRecord applies the state transition for one record.
func (p *Processor) processRecord(ctx context.Context, rec Record) (out Outcome) {
	start := p.now()
	out.Record = rec
	defer func() { out.Duration = p.now().Sub(start) }()

	if rec.Status.Terminal() {
		out.Result = ResultSkipped
		return out
	}

	if missing := rec.missingFields(); len(missing) > 0 {
		out.Result = ResultFailed
		out.Err = fmt.Errorf("%w: %s", ErrMissingData, strings.Join(missing, ", "))
		if err := p.writeStatus(ctx, rec.Row, Failed(DetailMissingData)); err != nil {
			out.Err = errors.Join(out.Err, err)
		}
		return out
	}

	// A send that cannot be preceded by Pending could not be recorded
	// either, so the record is left for the next run.
	if err := p.writeStatus(ctx, rec.Row, Pending()); err != nil {
		out.Result = ResultFailed
		out.Err = err
		return out
	}

	location, err := p.deliver(ctx, rec)
	if err != nil {
		out.Result = ResultFailed
		out.Err = err
		if werr := p.writeStatus(ctx, rec.Row, Failed(failureDetail(err))); werr != nil {
			out.Err = errors.Join(err, werr)
		}
		return out
	}

	out.Result = ResultSent
	out.Location = location
	if err := p.writeStatus(ctx, rec.Row, Sent()); err != nil {
		out.Err = err
	}
	return out
}

// deliver renders then sends. Panics in either step are contained to the record.
func (p *Processor) deliver(ctx context.Context, rec Record) (location string, err error) {
	step := ErrRender
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", step, r)
		}
	}()

	artifact, err := p.renderer.Render(ctx, rec.FullName, rec.EventName)
	if err != nil {
		return "", ensureKind(err, ErrRender)
	}

	step = ErrSend
	if err := p.notifier.Send(ctx, rec.Email, rec.FullName, rec.EventName, artifact); err != nil {
		return "", ensureKind(err, ErrSend)
	}
	return artifact.Location, nil
}

func (p *Processor) writeStatus(ctx context.Context, row int, s Status) error {
	if err := p.source.WriteCell(ctx, row, p.columns.Status, s.String()); err != nil {
		return fmt.Errorf("%w: row %d (%s): %w", ErrLedgerWrite, row, s.State, err)
	}
	return nil
}

func (p *Processor) logOutcome(ctx context.Context, out Outcome) {
	attrs := []any{
		slog.Int("row", out.Record.Row),
		slog.String("name", out.Record.FullName),
		slog.String("result", out.Result.String()),
		slog.Duration("duration", out.Duration),
	}

	switch {
	case out.Result == ResultSkipped:
		p.logger.DebugContext(ctx, "record already sent", attrs...)
	case out.Err != nil && out.Result == ResultSent:
		p.logger.ErrorContext(ctx, "certificate sent but status not recorded", append(attrs, slog.Any("error", out.Err))...)
	case out.Err != nil:
		p.logger.WarnContext(ctx, "record failed", append(attrs, slog.String("kind", out.Kind()), slog.Any("error", out.Err))...)
	default:
		p.logger.InfoContext(ctx, "certificate sent", append(attrs, slog.String("email", out.Record.Email))...)
	}
}

// ensureKind makes err match kind with errors.Is.
func ensureKind(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

func failureDetail(err error) string {
	switch {
	case errors.Is(err, ErrRender):
		return DetailRender
	case errors.Is(err, ErrSend):
		return DetailSend
	default:
		return ""
	}
}
