package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

// FireHandler is the handler name every scheduled merge is registered under.
const FireHandler = "mailmerge.scheduled_send"

// Snapshots persists the configuration captured at schedule time.
// LoadSnapshot returns an error wrapping a not-found sentinel when absent;
// the Scheduler only distinguishes success from failure.
type Snapshots interface {
	SaveSnapshot(ctx context.Context, cfg merge.Config) error
	LoadSnapshot(ctx context.Context) (merge.Config, error)
	DeleteSnapshot(ctx context.Context) error
}

// Runner executes a merge for the given configuration.
type Runner interface {
	RunMerge(ctx context.Context, cfg merge.Config) (*merge.Run, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cfg merge.Config) (*merge.Run, error)

func (f RunnerFunc) RunMerge(ctx context.Context, cfg merge.Config) (*merge.Run, error) {
	return f(ctx, cfg)
}

// Scheduler manages the single scheduled merge.
//
// Schedule, Cancel, Sweep and the start and end of Fire are serialized. While
// a fired run executes, Schedule reports ErrAlreadyScheduled.
type Scheduler struct {
	registry    Registry
	snapshots   Snapshots
	runner      Runner
	diagnostics merge.Diagnostics
	logger      *slog.Logger
	now         func() time.Time

	mu     sync.Mutex
	firing int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiagnostics sets where scheduler errors are recorded.
func WithDiagnostics(d merge.Diagnostics) Option {
	return func(s *Scheduler) {
		if d != nil {
			s.diagnostics = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Scheduler.
func New(registry Registry, snapshots Snapshots, runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		registry:    registry,
		snapshots:   snapshots,
		runner:      runner,
		diagnostics: nopDiagnostics{},
		logger:      logger.NewNope(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule registers one invocation at at and snapshots cfg for it.
// at must be strictly after now. Nothing is written when an invocation is
// already pending or a fired run is still executing.
func (s *Scheduler) Schedule(ctx context.Context, at time.Time, cfg merge.Config) (Invocation, error) {
	if !at.After(s.now()) {
		return Invocation{}, ErrInvalidScheduleTime
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.firing > 0 {
		return Invocation{}, ErrAlreadyScheduled
	}
	pending, err := s.registry.List(ctx, FireHandler)
	if err != nil {
		return Invocation{}, errors.Join(ErrRegistry, err)
	}
	if len(pending) > 0 {
		return Invocation{}, ErrAlreadyScheduled
	}

	inv, err := s.registry.Register(ctx, FireHandler, at)
	if errors.Is(err, ErrAlreadyScheduled) {
		return Invocation{}, err
	}
	if err != nil {
		return Invocation{}, errors.Join(ErrRegistry, err)
	}

	if err := s.snapshots.SaveSnapshot(ctx, cfg); err != nil {
		if cerr := s.registry.Cancel(ctx, inv.ID); cerr != nil {
			s.diagnostics.Record(ctx, "failed to cancel invocation after snapshot failure", cerr)
		}
		return Invocation{}, fmt.Errorf("save snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "merge scheduled",
		slog.String("invocation_id", inv.ID),
		slog.Time("at", inv.At),
	)
	return inv, nil
}

// Fire runs the scheduled configuration. Whatever the outcome, every pending
// invocation is cancelled and the snapshot that was run is removed
// afterwards. Cancelling ctx does not stop the run.
func (s *Scheduler) Fire(ctx context.Context) (*merge.Run, error) {
	return s.fire(ctx, nil)
}

// fire runs the snapshot when claim, called under the lock, reports true.
// A nil claim always fires.
func (s *Scheduler) fire(ctx context.Context, claim func() bool) (run *merge.Run, err error) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	if claim != nil && !claim() {
		s.mu.Unlock()
		return nil, nil
	}
	s.firing++
	cfg, err := s.snapshots.LoadSnapshot(ctx)
	s.mu.Unlock()

	var loaded *merge.Config
	if err == nil {
		loaded = &cfg
	}
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.firing--
		if cerr := s.cleanup(ctx, loaded); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err != nil {
		err = errors.Join(ErrNoSnapshot, err)
		s.diagnostics.Record(ctx, "scheduled run has no configuration", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "scheduled merge firing")

	run, err = s.runner.RunMerge(ctx, cfg)
	if err != nil {
		s.diagnostics.Record(ctx, "scheduled run failed", err)
	}
	return run, err
}

// Cancel cancels every pending invocation. The snapshot is kept.
// Cancelling with nothing pending succeeds.
func (s *Scheduler) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.cancelAll(ctx)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "scheduled merge cancelled", slog.Int("invocations", n))
	return nil
}

// Status returns the pending invocation, or nil when nothing is scheduled.
func (s *Scheduler) Status(ctx context.Context) (*Invocation, error) {
	pending, err := s.registry.List(ctx, FireHandler)
	if err != nil {
		return nil, errors.Join(ErrRegistry, err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	next := pending[0]
	for _, inv := range pending[1:] {
		if inv.At.Before(next.At) {
			next = inv
		}
	}
	return &next, nil
}

// Sweep cancels pending invocations left without a snapshot and returns how
// many were cancelled. It does nothing while a fired run executes.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.firing > 0 {
		return 0, nil
	}
	if _, err := s.snapshots.LoadSnapshot(ctx); err == nil {
		return 0, nil
	}

	n, err := s.cancelAll(ctx)
	if err != nil {
		return n, err
	}
	if n > 0 {
		s.logger.WarnContext(ctx, "cancelled orphaned invocations", slog.Int("invocations", n))
	}
	return n, nil
}

// cleanup cancels pending invocations and removes the snapshot when it is
// still the one loaded. A nil loaded removes whatever unreadable snapshot is
// left. Callers hold s.mu.
func (s *Scheduler) cleanup(ctx context.Context, loaded *merge.Config) error {
	var errs []error
	if _, err := s.cancelAll(ctx); err != nil {
		errs = append(errs, err)
	}

	if loaded != nil {
		current, err := s.snapshots.LoadSnapshot(ctx)
		if err == nil && current != *loaded {
			s.logger.WarnContext(ctx, "scheduled configuration replaced during the run, keeping it")
			return errors.Join(errs...)
		}
	}

	if err := s.snapshots.DeleteSnapshot(ctx); err != nil {
		s.diagnostics.Record(ctx, "failed to remove scheduled configuration", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Scheduler) cancelAll(ctx context.Context) (int, error) {
	pending, err := s.registry.List(ctx, FireHandler)
	if err != nil {
		err = errors.Join(ErrRegistry, err)
		s.diagnostics.Record(ctx, "failed to list scheduled invocations", err)
		return 0, err
	}

	var errs []error
	n := 0
	for _, inv := range pending {
		if err := s.registry.Cancel(ctx, inv.ID); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", inv.ID, err))
			continue
		}
		n++
	}
	if len(errs) > 0 {
		err := errors.Join(append([]error{ErrRegistry}, errs...)...)
		s.diagnostics.Record(ctx, "failed to cancel scheduled invocations", err)
		return n, err
	}
	return n, nil
}

type nopDiagnostics struct{}

func (nopDiagnostics) Record(context.Context, string, error) {}
