package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

// taskKind is the River kind shared by every task.
const taskKind = "mailmerge:task"

// pendingStates are the states of a job that has not started running.
var pendingStates = []rivertype.JobState{
	rivertype.JobStateAvailable,
	rivertype.JobStatePending,
	rivertype.JobStateRetryable,
	rivertype.JobStateScheduled,
}

// activeStates are the states in which a unique job blocks a duplicate.
var activeStates = append(slices.Clone(pendingStates), rivertype.JobStateRunning)

// listPageSize is the page size used when listing jobs.
const listPageSize = 500

// Pending describes a job waiting to run.
type Pending struct {
	ScheduledAt time.Time
	Task        string
	ID          int64
}

// queueClient is the subset of the River client the Enqueuer uses.
type queueClient interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
	JobList(ctx context.Context, params *river.JobListParams) (*river.JobListResult, error)
	JobCancel(ctx context.Context, jobID int64) (*rivertype.JobRow, error)
}

// Enqueuer inserts and inspects jobs without processing them.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client queueClient
	logger *slog.Logger
}

// EnqueuerOption configures the enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithEnqueuerLogger sets the logger for the enqueuer.
func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return func(e *Enqueuer) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEnqueuer creates an insert-only River client, for processes that
// schedule work handled by a separate worker.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	e := &Enqueuer{pool: pool, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(e)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: e.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}
	e.client = client

	return e, nil
}

// Enqueue adds a task to the queue and returns the job ID.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) (int64, error) {
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return 0, err
	}

	res, err := e.client.Insert(ctx, args, insertOpts)
	if err != nil {
		return 0, fmt.Errorf("job: enqueue: %w", err)
	}
	if res.UniqueSkippedAsDuplicate {
		return res.Job.ID, fmt.Errorf("%w: %s job %d", ErrDuplicate, name, res.Job.ID)
	}

	e.logger.DebugContext(ctx, "job enqueued",
		slog.String("task", name),
		slog.Int64("job_id", res.Job.ID),
		slog.Time("scheduled_at", res.Job.ScheduledAt),
	)
	return res.Job.ID, nil
}

// Pending lists the jobs of the named task that have not started yet,
// soonest first.
func (e *Enqueuer) Pending(ctx context.Context, name string) ([]Pending, error) {
	params := river.NewJobListParams().
		Kinds(taskKind).
		States(pendingStates...).
		First(listPageSize)

	var out []Pending
	for {
		res, err := e.client.JobList(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("job: list: %w", err)
		}

		for _, row := range res.Jobs {
			var args taskArgs
			if err := json.Unmarshal(row.EncodedArgs, &args); err != nil {
				continue
			}
			if args.TaskName != name {
				continue
			}
			out = append(out, Pending{ID: row.ID, Task: args.TaskName, ScheduledAt: row.ScheduledAt})
		}

		if len(res.Jobs) < listPageSize || res.LastCursor == nil {
			break
		}
		params = params.After(res.LastCursor)
	}

	slices.SortFunc(out, func(a, b Pending) int { return a.ScheduledAt.Compare(b.ScheduledAt) })
	return out, nil
}

// Cancel cancels a job. Cancelling an unknown job is not an error.
func (e *Enqueuer) Cancel(ctx context.Context, id int64) error {
	if _, err := e.client.JobCancel(ctx, id); err != nil {
		if errors.Is(err, rivertype.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("job: cancel %d: %w", id, err)
	}
	return nil
}

// buildJobArgs creates River job arguments from the task name and payload.
func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal payload: %w", err)
		}
	}

	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	insertOpts := &river.InsertOpts{
		Queue:       cfg.queue,
		MaxAttempts: cfg.maxAttempts,
		Tags:        cfg.tags,
	}
	if cfg.scheduledAt != nil {
		insertOpts.ScheduledAt = *cfg.scheduledAt
	}

	args := &taskArgs{TaskName: name, Payload: raw}
	if cfg.uniqueKey != "" || cfg.uniqueFor > 0 {
		args.UniqueKey = cfg.uniqueKey
		insertOpts.UniqueOpts = river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: cfg.uniqueFor,
			ByState:  activeStates,
		}
	}

	return args, insertOpts, nil
}

// taskArgs is the River job arguments type for all tasks.
type taskArgs struct {
	TaskName  string          `json:"task_name"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	UniqueKey string          `json:"unique_key,omitempty"`
}

func (taskArgs) Kind() string { return taskKind }

var _ queueClient = (*river.Client[pgx.Tx])(nil)
