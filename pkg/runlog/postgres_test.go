package runlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

var at = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func outcomes() []merge.Outcome {
	return []merge.Outcome{
		{RunID: "run-1", Row: 1, Time: at, To: "ana@example.com", Subject: "Hi", Body: "<p>x</p>", Status: merge.StatusSuccess, Message: merge.MsgSent},
		{RunID: "run-1", Row: 2, Time: at, Status: merge.StatusSkipped},
	}
}

func TestPostgres_Append(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO merge_outcomes")
	prep.ExpectExec().
		WithArgs("run-1", 1, at, "ana@example.com", "Hi", "<p>x</p>", "", "", "success", "sent").
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("run-1", 2, at, "", "", "", "", "", "skipped_condition_not_met", "").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostgres(db).Append(context.Background(), outcomes()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendRollsBack(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO merge_outcomes")
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = NewPostgres(db).Append(context.Background(), outcomes())
	require.ErrorIs(t, err, ErrAppendFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendEmpty(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewPostgres(db).Append(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Record(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO merge_errors").
		WithArgs(at, "run-7", "row 3: send failed: timeout").
		WillReturnResult(sqlmock.NewResult(1, 1))

	p := NewPostgres(db)
	p.now = func() time.Time { return at }

	ctx := logger.WithRunID(context.Background(), "run-7")
	p.Record(ctx, "row 3: send failed", errors.New("timeout"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordFallsBackToLogger(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO merge_errors").WillReturnError(errors.New("conn reset"))

	var buf bytes.Buffer
	p := NewPostgres(db, WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	p.Record(context.Background(), "scheduled run has no configuration", nil)

	assert.Contains(t, buf.String(), "scheduled run has no configuration")
	assert.Contains(t, buf.String(), "conn reset")
}

func TestPostgres_Outcomes(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM merge_outcomes").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "row_number", "logged_at", "recipient", "subject", "body", "cc", "bcc", "status", "message"}).
			AddRow("run-1", 1, at, "ana@example.com", "Hi", "<p>x</p>", "", "", "success", "sent").
			AddRow("run-1", 2, at, "", "", "", "", "", "failed", "recipient column not found"))

	got, err := NewPostgres(db).Outcomes(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, merge.StatusSuccess, got[0].Status)
	assert.Equal(t, "ana@example.com", got[0].To)
	assert.Equal(t, merge.StatusFailed, got[1].Status)
	assert.Equal(t, 2, got[1].Row)
	require.NoError(t, mock.ExpectationsWereMet())
}
