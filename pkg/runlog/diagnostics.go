package runlog

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

// Slog records diagnostics as error-level log entries.
type Slog struct {
	logger *slog.Logger
}

// NewSlog creates diagnostics writing to log.
func NewSlog(log *slog.Logger) *Slog {
	return &Slog{logger: log}
}

func (s *Slog) Record(ctx context.Context, message string, err error) {
	s.logger.ErrorContext(ctx, message, slog.Any("error", err))
}

// Tee records every diagnostic to all of ds.
func Tee(ds ...merge.Diagnostics) merge.Diagnostics {
	return tee(ds)
}

type tee []merge.Diagnostics

func (t tee) Record(ctx context.Context, message string, err error) {
	for _, d := range t {
		if d != nil {
			d.Record(ctx, message, err)
		}
	}
}
