package schedule

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/job"
)

// Queue is the part of *job.Manager a JobRegistry needs.
type Queue interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) (int64, error)
	Pending(ctx context.Context, name string) ([]job.Pending, error)
	Cancel(ctx context.Context, id int64) error
}

// JobRegistry stores invocations as River jobs. Each invocation is a single
// attempt job scheduled at its instant, so a failed run is never retried.
// Jobs are unique per handler while pending or running, which holds the one
// active schedule rule across processes.
type JobRegistry struct {
	queue Queue
}

// NewJobRegistry creates a registry over q.
func NewJobRegistry(q Queue) *JobRegistry {
	return &JobRegistry{queue: q}
}

func (r *JobRegistry) Register(ctx context.Context, handler string, at time.Time) (Invocation, error) {
	id, err := r.queue.Enqueue(ctx, handler, FirePayload{},
		job.ScheduledAt(at),
		job.MaxAttempts(1),
		job.UniqueKey(handler),
		job.Tags("mailmerge", "scheduled"),
	)
	if errors.Is(err, job.ErrDuplicate) {
		return Invocation{}, ErrAlreadyScheduled
	}
	if err != nil {
		return Invocation{}, err
	}
	return Invocation{ID: strconv.FormatInt(id, 10), Handler: handler, At: at}, nil
}

func (r *JobRegistry) List(ctx context.Context, handler string) ([]Invocation, error) {
	pending, err := r.queue.Pending(ctx, handler)
	if err != nil {
		return nil, err
	}

	out := make([]Invocation, 0, len(pending))
	for _, p := range pending {
		out = append(out, Invocation{ID: strconv.FormatInt(p.ID, 10), Handler: p.Task, At: p.ScheduledAt})
	}
	return out, nil
}

// Cancel cancels the job behind id. An id that names no job is ignored.
func (r *JobRegistry) Cancel(ctx context.Context, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil
	}
	return r.queue.Cancel(ctx, n)
}
