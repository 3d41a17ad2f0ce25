package certmail

import (
	"io"
	"log/slog"
	"time"
)

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithIssueDate sets the text drawn in the optional date box.
func WithIssueDate(date string) RendererOption {
	return func(r *Renderer) {
		r.issueDate = date
	}
}

// WithTextColor sets the RGB color of overlay text (default black).
func WithTextColor(red, green, blue int) RendererOption {
	return func(r *Renderer) {
		r.color = [3]int{red, green, blue}
	}
}

// WithRenderClock sets the clock used for document creation dates.
func WithRenderClock(now func() time.Time) RendererOption {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger for per-record progress. The default discards.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithColumns overrides the spreadsheet column names.
func WithColumns(c Columns) ProcessorOption {
	return func(p *Processor) {
		p.columns = c.withDefaults()
	}
}

// WithProcessorClock sets the clock used to time records.
func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
