package mailmerge

import "errors"

var (
	ErrSourceRequired    = errors.New("mailmerge: dataset source is required")
	ErrNoTestRecipient   = errors.New("mailmerge: test recipient is not configured")
	ErrUnexpectedFailure = errors.New("mailmerge: unexpected failure")
	ErrListUnsupported   = errors.New("mailmerge: dataset source cannot list datasets")
	ErrNoRunLog          = errors.New("mailmerge: run log is not readable")
)
