package job

import "errors"

var (
	// ErrUnknownTask is returned when a job names a task that has not been
	// registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a payload cannot be decoded into
	// the task's payload type.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrDuplicate is returned by Enqueue when a unique job is already active.
	ErrDuplicate = errors.New("job: duplicate of an active job")

	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")
	ErrPoolRequired   = errors.New("job: pool is required")

	// ErrHealthcheckFailed is returned by Healthcheck.
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)
