package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
)

// Dispatcher delivers a single message.
// *mailer.Mailer satisfies it.
type Dispatcher interface {
	Send(ctx context.Context, email *mailer.Email) error
}

// AttachmentGenerator renders message content to a named document.
type AttachmentGenerator interface {
	Render(ctx context.Context, content, filename string) (*mailer.Attachment, error)
}

// Archiver stores a copy of a rendered attachment under a folder.
type Archiver interface {
	Archive(ctx context.Context, folder string, att *mailer.Attachment) error
}

// OutcomeLogger persists the outcomes of a run. It is called once per run.
type OutcomeLogger interface {
	Append(ctx context.Context, outcomes []Outcome) error
}

// Diagnostics records recoverable errors, separately from the outcome log.
type Diagnostics interface {
	Record(ctx context.Context, message string, err error)
}

// Engine runs merges. It is safe for concurrent use; each Run is sequential.
type Engine struct {
	dispatcher  Dispatcher
	outcomes    OutcomeLogger
	attachments AttachmentGenerator
	archiver    Archiver
	diagnostics Diagnostics
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// NewEngine creates an engine that sends through d and flushes outcomes to log.
// A nil log drops outcomes after the run returns them.
func NewEngine(d Dispatcher, log OutcomeLogger, opts ...Option) *Engine {
	e := &Engine{
		dispatcher:  d,
		outcomes:    log,
		diagnostics: discardDiagnostics{},
		logger:      logger.NewNope(),
		now:         time.Now,
		newID:       defaultRunID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes every row in order and returns one outcome per row.
//
// Row-level failures never abort the run; they are reported in the row's
// outcome. Run returns an error only when the run could not start or when the
// outcomes could not be flushed, in which case the returned Run still holds
// every outcome.
//
// Cancelling ctx does not stop a run: every row is processed and the outcomes
// are flushed. Context values are kept.
func (e *Engine) Run(ctx context.Context, cfg Config, headers []string, rows [][]Value) (*Run, error) {
	if e.dispatcher == nil {
		return nil, ErrNoDispatcher
	}
	ctx = context.WithoutCancel(ctx)

	run := &Run{
		ID:        e.newID(),
		StartedAt: e.now(),
		Outcomes:  make([]Outcome, 0, len(rows)),
	}
	ctx = logger.WithRunID(ctx, run.ID)

	body, err := mailer.BodyHTML(string(cfg.BodyFormat), cfg.Body)
	if err != nil {
		e.diagnostics.Record(ctx, "failed to prepare message body", err)
		return nil, err
	}

	e.logger.InfoContext(ctx, "merge run started",
		slog.Int("rows", len(rows)),
		slog.Bool("condition", cfg.ConditionEnabled),
		slog.Bool("attachment", cfg.AttachmentEnabled),
	)

	for i, row := range rows {
		out := e.processRow(ctx, cfg, body, headers, row, i+1)
		run.Outcomes = append(run.Outcomes, out)
	}
	run.FinishedAt = e.now()

	e.logger.InfoContext(ctx, "merge run finished",
		slog.Int("sent", run.Count(StatusSuccess)),
		slog.Int("failed", run.Count(StatusFailed)),
		slog.Int("skipped", run.Count(StatusSkipped)),
		slog.Duration("duration", run.FinishedAt.Sub(run.StartedAt)),
	)

	if e.outcomes != nil {
		if err := e.outcomes.Append(ctx, run.Outcomes); err != nil {
			e.diagnostics.Record(ctx, "failed to write outcome log", err)
			return run, errors.Join(ErrOutcomeLogFailed, err)
		}
	}

	return run, nil
}

// processRow walks a single row through condition check, field resolution,
// attachment generation and send.
func (e *Engine) processRow(ctx context.Context, cfg Config, body string, headers []string, row []Value, n int) (out Outcome) {
	runID, _ := logger.RunID(ctx)
	out = Outcome{Row: n, RunID: runID}

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			out.Status = StatusFailed
			out.Message = "unexpected failure: " + err.Error()
			e.diagnostics.Record(ctx, fmt.Sprintf("row %d: unexpected failure", n), err)
		}
		out.Time = e.now()
	}()

	if cfg.ConditionEnabled {
		ok, err := Evaluate(row, headers, cfg.Condition())
		switch {
		case errors.Is(err, ErrColumnNotFound):
			return e.fail(ctx, out, MsgConditionColumnAbsent, err)
		case err != nil:
			return e.fail(ctx, out, err.Error(), err)
		case !ok:
			out.Status = StatusSkipped
			return out
		}
	}

	fields, err := ResolveFields(row, headers, cfg)
	if err != nil {
		return e.fail(ctx, out, MsgRecipientColumnAbsent, err)
	}

	out.To = fields.To
	out.Subject = fields.Subject
	out.Body = cfg.Body
	out.CC = fields.CC
	out.BCC = fields.BCC
	out.Status = StatusSuccess

	email := &mailer.Email{
		To:      mailer.SplitAddresses(fields.To),
		CC:      mailer.SplitAddresses(fields.CC),
		BCC:     mailer.SplitAddresses(fields.BCC),
		Subject: fields.Subject,
		HTML:    body,
		ReplyTo: cfg.ReplyTo,
		From:    cfg.From,
		Tags:    mailer.Tags{"run_id": runID},
	}

	var archiveErr error
	if cfg.AttachmentEnabled {
		att, err := e.attachment(ctx, cfg, body, headers, row)
		if err != nil {
			// The message still goes out, without the attachment.
			out = e.fail(ctx, out, "attachment rendering failed: "+err.Error(), err)
		} else {
			email.Attachments = []mailer.Attachment{*att}
			archiveErr = e.archive(ctx, cfg, att)
			if archiveErr != nil {
				e.diagnostics.Record(ctx, fmt.Sprintf("row %d: %s", n, MsgArchiveFailed), archiveErr)
			}
		}
	}

	if err := e.dispatcher.Send(ctx, email); err != nil {
		return e.fail(ctx, out, "send failed: "+err.Error(), err)
	}

	if out.Status == StatusSuccess {
		out.Message = MsgSent
		if archiveErr != nil {
			// Delivery succeeded; only the stored copy is missing.
			out.Message = MsgSent + "; " + MsgArchiveFailed + ": " + archiveErr.Error()
		}
	}
	return out
}

// attachment renders the row's document.
func (e *Engine) attachment(ctx context.Context, cfg Config, body string, headers []string, row []Value) (*mailer.Attachment, error) {
	if e.attachments == nil {
		return nil, ErrNoAttachmentGenerator
	}

	filename := AttachmentFilename(cfg.AttachmentFilename, row, headers)
	return e.attachments.Render(ctx, body, filename)
}

// archive stores a copy of att when an output folder is configured.
// A failed archive does not fail the row.
func (e *Engine) archive(ctx context.Context, cfg Config, att *mailer.Attachment) error {
	if cfg.OutputFolder == "" || e.archiver == nil {
		return nil
	}
	if err := e.archiver.Archive(ctx, cfg.OutputFolder, att); err != nil {
		return fmt.Errorf("%s: %w", att.Filename, err)
	}
	return nil
}

func (e *Engine) fail(ctx context.Context, out Outcome, msg string, err error) Outcome {
	out.Status = StatusFailed
	out.Message = msg
	e.diagnostics.Record(ctx, fmt.Sprintf("row %d: %s", out.Row, msg), err)
	return out
}
