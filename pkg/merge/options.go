package merge

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Option configures the Engine.
type Option func(*Engine)

// WithAttachments sets the generator used when Config.AttachmentEnabled is set.
func WithAttachments(g AttachmentGenerator) Option {
	return func(e *Engine) {
		e.attachments = g
	}
}

// WithArchiver sets where rendered attachments are copied when
// Config.OutputFolder is set.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) {
		e.archiver = a
	}
}

// WithDiagnostics sets the diagnostic log that receives every recoverable error.
func WithDiagnostics(d Diagnostics) Option {
	return func(e *Engine) {
		if d != nil {
			e.diagnostics = d
		}
	}
}

// WithLogger sets the logger for run progress.
// If not set, a noop logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source used for outcome timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunIDs overrides the run ID generator.
// Defaults to UUIDv7, which sorts by creation time.
func WithRunIDs(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

func defaultRunID() string {
	if v, err := uuid.NewV7(); err == nil {
		return v.String()
	}
	return uuid.NewString()
}

type discardDiagnostics struct{}

func (discardDiagnostics) Record(_ context.Context, _ string, _ error) {}
