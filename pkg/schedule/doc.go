// Package schedule runs a merge once at a future instant.
//
// A Scheduler moves through Unscheduled, Scheduled and then Fired or
// Cancelled, back to Unscheduled. Scheduling takes a snapshot of the merge
// configuration and registers one deferred invocation of the fire handler
// with a Registry. When the invocation fires, the snapshot is loaded and run,
// after which every pending invocation is cancelled and the snapshot is
// removed. Only one schedule may be active at a time, and a fired run that is
// still executing counts as the active one.
//
// Two registries are provided. MemoryRegistry is for single-process use; its
// Run method is the worker that fires due invocations. JobRegistry stores
// invocations as one-attempt River jobs through pkg/job, unique while pending
// or running. FireTask and SweepTask plug the scheduler into the job manager:
//
//	sched := schedule.New(registry, snapshots, runner)
//	manager, err := job.NewManager(pool,
//	    job.WithTask(schedule.NewFireTask(sched)),
//	    job.WithScheduledTask(schedule.NewSweepTask(sched)),
//	)
package schedule
