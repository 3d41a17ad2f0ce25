package certmail

import (
	"strings"
)

// State is the delivery state of a single record.
type State int

// Delivery states. Within one attempt a record only moves forward:
// Empty/Failed/Pending -> Pending -> Sent | Failed. Sent is terminal across runs.
const (
	StateEmpty State = iota
	StatePending
	StateSent
	StateFailed
)

// Persisted status markers. A value is classified by its leading mark, so
// "✅ SENT (resent by hand)" is still Sent.
const (
	markPending = "⏳"
	markSent    = "✅"
	markFailed  = "❌"

	StatusPendingText = markPending + " PENDING"
	StatusSentText    = markSent + " SENT"
	StatusFailedText  = markFailed + " FAILED"
)

// Failure details written next to the Failed marker.
const (
	DetailMissingData = "missing data"
	DetailRender      = "render error"
	DetailSend        = "send error"
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSent:
		return "sent"
	case StateFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Status is the value of a record's status cell.
type Status struct {
	State  State
	Detail string // optional, only meaningful for StateFailed
}

// Pending returns the in-flight status.
func Pending() Status { return Status{State: StatePending} }

// Sent returns the terminal status.
func Sent() Status { return Status{State: StateSent} }

// Failed returns a retryable failure status with an optional detail.
func Failed(detail string) Status { return Status{State: StateFailed, Detail: detail} }

// ParseStatus classifies a raw status cell. Unknown text is treated as Empty
// so the record stays eligible for processing.
func ParseStatus(raw string) Status {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, markSent):
		return Status{State: StateSent}
	case strings.HasPrefix(s, markPending):
		return Status{State: StatePending}
	case strings.HasPrefix(s, markFailed):
		return Status{State: StateFailed, Detail: failedDetail(s)}
	default:
		return Status{State: StateEmpty}
	}
}

// failedDetail extracts "reason" from "❌ FAILED (reason)".
func failedDetail(s string) string {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return ""
	}
	return strings.TrimSpace(s[open+1 : len(s)-1])
}

// String returns the ledger representation of the status.
func (s Status) String() string {
	switch s.State {
	case StatePending:
		return StatusPendingText
	case StateSent:
		return StatusSentText
	case StateFailed:
		if s.Detail != "" {
			return StatusFailedText + " (" + s.Detail + ")"
		}
		return StatusFailedText
	default:
		return ""
	}
}

// Terminal reports whether the record must never be processed again.
func (s Status) Terminal() bool {
	return s.State == StateSent
}
