package certmail

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Per-record errors. The processor converts these into a Failed status
	// and moves on to the next record.
	ErrMissingData = errors.New("missing data")
	ErrRender      = errors.New("certificate rendering failed")
	ErrSend        = errors.New("email delivery failed")
	ErrLedgerWrite = errors.New("failed to write status to ledger")

	// ErrInterrupted is returned with a partial report when the context is
	// canceled between records.
	ErrInterrupted = errors.New("run interrupted")

	// Setup errors. These abort the run before any record is processed.
	ErrTemplateLoad  = errors.New("failed to load certificate template")
	ErrTemplateEmpty = errors.New("certificate template has no page")
	ErrFontLoad      = errors.New("failed to load font")
	ErrSourceRead    = errors.New("failed to read records")
	ErrInvalidBox    = errors.New("invalid layout box")

	// Mail validation errors.
	ErrNoRecipient  = errors.New("recipient address is empty")
	ErrNoAttachment = errors.New("artifact has no content")
)

// Render stages reported by RenderError.
const (
	StageFont     = "font"
	StageTemplate = "template"
	StageDraw     = "draw"
	StageWrite    = "write"
)

// RenderError reports a failure to produce a certificate artifact.
// It matches ErrRender with errors.Is.
type RenderError struct {
	Name  string // participant name the artifact was for
	Stage string // one of the Stage* constants
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering certificate for %q (%s): %v", e.Name, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() []error {
	return []error{ErrRender, e.Err}
}

// SendError reports a failed delivery attempt. It matches ErrSend with errors.Is.
type SendError struct {
	To  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("sending certificate to %s: %v", e.To, e.Err)
}

func (e *SendError) Unwrap() []error {
	return []error{ErrSend, e.Err}
}
