package schedule

import (
	"context"
	"errors"
)

// SweepInterval is the cron expression for the orphan sweep.
const SweepInterval = "*/30 * * * *"

// FirePayload is the job payload of a scheduled send. It is empty: the
// configuration lives in the snapshot.
type FirePayload struct{}

// FireTask runs the scheduled merge when its invocation comes due.
type FireTask struct {
	scheduler *Scheduler
}

// NewFireTask creates the task handling FireHandler invocations.
func NewFireTask(s *Scheduler) *FireTask {
	return &FireTask{scheduler: s}
}

func (t *FireTask) Name() string { return FireHandler }

// Handle fires the schedule. A missing snapshot is recorded by the scheduler
// and not reported as a job failure.
func (t *FireTask) Handle(ctx context.Context, _ FirePayload) error {
	_, err := t.scheduler.Fire(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return nil
	}
	return err
}

// SweepTask periodically cancels invocations whose snapshot is gone.
type SweepTask struct {
	scheduler *Scheduler
}

// NewSweepTask creates the periodic sweep task.
func NewSweepTask(s *Scheduler) *SweepTask {
	return &SweepTask{scheduler: s}
}

func (t *SweepTask) Name() string     { return "mailmerge.sweep_schedule" }
func (t *SweepTask) Schedule() string { return SweepInterval }

func (t *SweepTask) Handle(ctx context.Context) error {
	_, err := t.scheduler.Sweep(ctx)
	return err
}
