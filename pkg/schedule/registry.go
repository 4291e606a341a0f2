package schedule

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"
)

// Invocation is a deferred call of a named handler at an instant.
type Invocation struct {
	At      time.Time `json:"at"`
	ID      string    `json:"id"`
	Handler string    `json:"handler"`
}

// Registry stores deferred invocations.
//
// List returns only invocations that have not started yet. Cancel of an
// unknown or already finished invocation is not an error.
type Registry interface {
	Register(ctx context.Context, handler string, at time.Time) (Invocation, error)
	List(ctx context.Context, handler string) ([]Invocation, error)
	Cancel(ctx context.Context, id string) error
}

// MemoryRegistry is an in-process Registry.
type MemoryRegistry struct {
	pending []Invocation
	seq     int
	mu      sync.Mutex
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{}
}

func (r *MemoryRegistry) Register(_ context.Context, handler string, at time.Time) (Invocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	inv := Invocation{ID: strconv.Itoa(r.seq), Handler: handler, At: at}
	r.pending = append(r.pending, inv)
	return inv, nil
}

func (r *MemoryRegistry) List(_ context.Context, handler string) ([]Invocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Invocation
	for _, inv := range r.pending {
		if inv.Handler == handler {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *MemoryRegistry) Cancel(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = slices.DeleteFunc(r.pending, func(inv Invocation) bool {
		return inv.ID == id
	})
	return nil
}

// Due removes and returns the invocations of handler scheduled at or before now,
// oldest first.
func (r *MemoryRegistry) Due(handler string, now time.Time) []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []Invocation
	r.pending = slices.DeleteFunc(r.pending, func(inv Invocation) bool {
		if inv.Handler == handler && !inv.At.After(now) {
			due = append(due, inv)
			return true
		}
		return false
	})
	slices.SortFunc(due, func(a, b Invocation) int { return a.At.Compare(b.At) })
	return due
}

// Run is the worker for the registry: every interval it fires s when a
// FireHandler invocation has come due. It returns when ctx is done.
func (r *MemoryRegistry) Run(ctx context.Context, s *Scheduler, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.fireDue(ctx, s)
		}
	}
}

func (r *MemoryRegistry) fireDue(ctx context.Context, s *Scheduler) {
	_, err := s.fire(ctx, func() bool {
		return len(r.Due(FireHandler, s.now())) > 0
	})
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		s.logger.ErrorContext(ctx, "scheduled run failed", slog.Any("error", err))
	}
}
