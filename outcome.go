package certmail

import (
	"errors"
	"time"
)

// Result is how a record left the processor.
type Result int

const (
	ResultSkipped Result = iota // already Sent, untouched
	ResultSent
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultSent:
		return "sent"
	case ResultFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Outcome is the result of processing one record. Err may be set on a Sent
// outcome when delivery succeeded but the final status write did not.
type Outcome struct {
	Record   Record
	Result   Result
	Err      error
	Location string // artifact location, set when sent
	Duration time.Duration
}

// Error kinds reported by Outcome.Kind.
const (
	KindNone       = ""
	KindValidation = "validation"
	KindRender     = "render"
	KindSend       = "send"
	KindLedger     = "ledger"
	KindOther      = "other"
)

// Kind classifies the outcome's error.
func (o Outcome) Kind() string {
	switch {
	case o.Err == nil:
		return KindNone
	case errors.Is(o.Err, ErrMissingData):
		return KindValidation
	case errors.Is(o.Err, ErrRender):
		return KindRender
	case errors.Is(o.Err, ErrSend):
		return KindSend
	case errors.Is(o.Err, ErrLedgerWrite):
		return KindLedger
	default:
		return KindOther
	}
}

// Report lists outcomes in source order.
type Report struct {
	Outcomes  []Outcome
	Remaining int // records not reached because the run was interrupted
}

// Counts tallies outcomes by result.
func (r *Report) Counts() (sent, failed, skipped int) {
	for _, o := range r.Outcomes {
		switch o.Result {
		case ResultSent:
			sent++
		case ResultFailed:
			failed++
		default:
			skipped++
		}
	}
	return sent, failed, skipped
}

// Failures returns the outcomes that did not end in Sent.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Result == ResultFailed {
			out = append(out, o)
		}
	}
	return out
}
