// Package job runs background tasks on River, the Postgres-native queue.
//
// Tasks are plain structs registered by structural typing. A one-off task
// has Name() and Handle(ctx, P); a periodic task has Name(), Schedule() and
// Handle(ctx), where Schedule returns a five-field cron expression:
//
//	manager, err := job.NewManager(pool,
//	    job.WithTask(schedule.NewFireTask(sched)),
//	    job.WithScheduledTask(schedule.NewSweepTask(sched)),
//	    job.WithLogger(log),
//	)
//
// All tasks share a single River job kind; the task name and JSON payload
// travel in the job arguments and are routed to the registered handler by
// one worker.
//
// Enqueue returns the River job ID, so callers can later inspect the job with
// Pending or cancel it with Cancel. This is how one-shot scheduled merges are
// tracked:
//
//	id, err := manager.Enqueue(ctx, schedule.FireHandler, nil,
//	    job.ScheduledAt(at),
//	    job.MaxAttempts(1),
//	    job.UniqueKey(schedule.FireHandler),
//	)
//
// With UniqueKey, a second insert while the first job is pending or running
// returns ErrDuplicate. Jobs run without River's default timeout unless
// WithJobTimeout is set.
//
// The River schema must exist before the manager starts; see db.MigrateRiver.
package job
