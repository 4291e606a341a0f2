// Package merge implements the row-driven mail-merge engine.
//
// A merge run takes a Config, the header row of a dataset and its data rows,
// and dispatches one message per qualifying row. Every row, whether it was
// sent, skipped or failed, produces exactly one Outcome, and the complete
// sequence of outcomes is flushed once to an OutcomeLogger at the end of the
// run.
//
// # Pipeline
//
// Each row goes through the same sequence of steps:
//
//   - Condition check: when Config.ConditionEnabled is set, the row's value in
//     Config.ConditionColumn is compared against Config.ConditionValue using
//     Config.ConditionOperator. Rows that do not qualify are recorded as
//     StatusSkipped.
//   - Field resolution: recipient, cc, bcc and subject are read from their
//     configured columns, falling back to the configured defaults.
//   - Attachment generation: when Config.AttachmentEnabled is set, the body is
//     rendered to a document named after Config.AttachmentFilename with its
//     <<Column>> markers substituted. A rendering failure marks the row failed
//     but the message is still sent without the attachment.
//   - Send: the message is handed to the Dispatcher.
//
// # Usage
//
//	engine := merge.NewEngine(dispatcher, outcomes,
//	    merge.WithAttachments(document.NewPDF()),
//	    merge.WithDiagnostics(diag),
//	    merge.WithLogger(log),
//	)
//
//	run, err := engine.Run(ctx, cfg, headers, rows)
//	if err != nil {
//	    return err
//	}
//	log.Info("merge finished", "run_id", run.ID, "rows", len(run.Outcomes))
//
// # Cell Values
//
// Rows carry Value cells, a tagged union of string, number, boolean, date and
// empty. ParseValue infers the kind from raw text; the same inference is applied
// to the configured comparison value, so a condition "greater_than 10" compares
// numerically against numeric cells. Parsed cells keep their source text, so
// "007" compares equal to 7 yet prints as "007".
//
// # Errors
//
//   - [ErrColumnNotFound] - condition column is not in the header
//   - [ErrRecipientColumnMissing] - recipient column is not in the header
//   - [ErrUnsupportedOperator] - unknown condition operator
//   - [ErrNoAttachmentGenerator] - attachments enabled without a generator
//   - [ErrOutcomeLogFailed] - outcomes could not be flushed
package merge
