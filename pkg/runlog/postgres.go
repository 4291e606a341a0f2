package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

const (
	insertOutcome = `INSERT INTO merge_outcomes
	(run_id, row_number, logged_at, recipient, subject, body, cc, bcc, status, message)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	insertError = `INSERT INTO merge_errors (logged_at, run_id, message) VALUES ($1, $2, $3)`

	selectOutcomes = `SELECT run_id, row_number, logged_at, recipient, subject, body, cc, bcc, status, message
	FROM merge_outcomes WHERE run_id = $1 ORDER BY row_number`
)

// Postgres is an outcome log and diagnostic log backed by Postgres.
type Postgres struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// PostgresOption configures Postgres.
type PostgresOption func(*Postgres)

// WithLogger sets the logger that receives diagnostics which could not be
// written to the database.
func WithLogger(l *slog.Logger) PostgresOption {
	return func(p *Postgres) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPostgres creates a run log over db.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{db: db, logger: logger.NewNope(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Append writes outcomes in a single transaction.
func (p *Postgres) Append(ctx context.Context, outcomes []merge.Outcome) (err error) {
	if len(outcomes) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(ErrAppendFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertOutcome)
	if err != nil {
		return errors.Join(ErrAppendFailed, err)
	}
	defer stmt.Close()

	for _, o := range outcomes {
		if _, err = stmt.ExecContext(ctx,
			o.RunID, o.Row, o.Time, o.To, o.Subject, o.Body, o.CC, o.BCC, string(o.Status), o.Message,
		); err != nil {
			return errors.Join(ErrAppendFailed, fmt.Errorf("row %d: %w", o.Row, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Join(ErrAppendFailed, err)
	}
	return nil
}

// Record writes a diagnostic entry. Write failures go to the logger.
func (p *Postgres) Record(ctx context.Context, message string, err error) {
	text := entryText(message, err)
	runID, _ := logger.RunID(ctx)

	if _, dbErr := p.db.ExecContext(ctx, insertError, p.now(), runID, text); dbErr != nil {
		p.logger.ErrorContext(ctx, "failed to write diagnostic entry",
			slog.String("entry", text),
			slog.Any("error", dbErr),
		)
	}
}

// Outcomes returns the outcomes of a run in row order.
func (p *Postgres) Outcomes(ctx context.Context, runID string) ([]merge.Outcome, error) {
	rows, err := p.db.QueryContext(ctx, selectOutcomes, runID)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []merge.Outcome
	for rows.Next() {
		var (
			o      merge.Outcome
			status string
		)
		if err := rows.Scan(&o.RunID, &o.Row, &o.Time, &o.To, &o.Subject, &o.Body, &o.CC, &o.BCC, &status, &o.Message); err != nil {
			return nil, errors.Join(ErrQueryFailed, err)
		}
		o.Status = merge.Status(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return out, nil
}

// entryText formats a diagnostic entry as "message: error".
func entryText(message string, err error) string {
	if err == nil {
		return message
	}
	return message + ": " + err.Error()
}
