package schedule

import "errors"

var (
	ErrInvalidScheduleTime = errors.New("schedule: time must be in the future")
	ErrAlreadyScheduled    = errors.New("schedule: a run is already scheduled")
	ErrNoSnapshot          = errors.New("schedule: no scheduled configuration")
	ErrRegistry            = errors.New("schedule: registry operation failed")
)
