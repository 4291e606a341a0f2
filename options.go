package mailmerge

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/merge"
	"github.com/dmitrymomot/mailmerge/pkg/schedule"
)

// Option configures a Service.
type Option func(*Service)

// WithRegistry sets where scheduled invocations are registered.
// Defaults to an in-process registry, whose schedules fire only while
// Service.Run is running.
func WithRegistry(r schedule.Registry) Option {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithRunLog sets where run outcomes are read back from.
func WithRunLog(r RunLog) Option {
	return func(s *Service) {
		if r != nil {
			s.runs = r
		}
	}
}

// WithPollInterval sets how often the in-process registry is checked for
// due schedules. Defaults to one second.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithDiagnostics sets the diagnostic error log.
func WithDiagnostics(d merge.Diagnostics) Option {
	return func(s *Service) {
		if d != nil {
			s.diagnostics = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTestRecipient sets the address SendTest delivers to.
func WithTestRecipient(addr string) Option {
	return func(s *Service) {
		s.testRecipient = addr
	}
}

// WithClock overrides time.Now for the service and its scheduler.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
