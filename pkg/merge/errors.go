package merge

import "errors"

var (
	// ErrColumnNotFound is returned when the condition column is not in the header.
	ErrColumnNotFound = errors.New("merge: condition column not found")

	// ErrRecipientColumnMissing is returned when the recipient column is not in the header.
	ErrRecipientColumnMissing = errors.New("merge: recipient column not found")

	// ErrUnsupportedOperator is returned for an unknown condition operator.
	ErrUnsupportedOperator = errors.New("merge: unsupported condition operator")

	// ErrNoAttachmentGenerator is returned when attachments are enabled
	// but the engine has no generator configured.
	ErrNoAttachmentGenerator = errors.New("merge: attachment generator not configured")

	// ErrOutcomeLogFailed is returned when the outcome sequence could not be flushed.
	ErrOutcomeLogFailed = errors.New("merge: failed to write outcome log")

	// ErrNoDispatcher is returned by NewEngine callers that pass a nil dispatcher.
	ErrNoDispatcher = errors.New("merge: dispatcher is required")
)
