package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
)

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	ret := m.Called(ctx, args, opts)
	res, _ := ret.Get(0).(*rivertype.JobInsertResult)
	return res, ret.Error(1)
}

func (m *mockQueue) JobList(ctx context.Context, params *river.JobListParams) (*river.JobListResult, error) {
	ret := m.Called(ctx, params)
	res, _ := ret.Get(0).(*river.JobListResult)
	return res, ret.Error(1)
}

func (m *mockQueue) JobCancel(ctx context.Context, id int64) (*rivertype.JobRow, error) {
	ret := m.Called(ctx, id)
	row, _ := ret.Get(0).(*rivertype.JobRow)
	return row, ret.Error(1)
}

func newTestEnqueuer(q queueClient) *Enqueuer {
	return &Enqueuer{client: q, logger: logger.NewNope()}
}

func row(t *testing.T, id int64, task string, at time.Time) *rivertype.JobRow {
	t.Helper()
	raw, err := json.Marshal(taskArgs{TaskName: task})
	require.NoError(t, err)
	return &rivertype.JobRow{ID: id, Kind: taskKind, EncodedArgs: raw, ScheduledAt: at}
}

func TestEnqueuer_Enqueue(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	q := &mockQueue{}
	q.On("Insert", mock.Anything, mock.MatchedBy(func(a river.JobArgs) bool {
		args, ok := a.(*taskArgs)
		return ok && args.TaskName == "fire"
	}), mock.MatchedBy(func(o *river.InsertOpts) bool {
		return o.MaxAttempts == 1 && o.ScheduledAt.Equal(at)
	})).Return(&rivertype.JobInsertResult{Job: &rivertype.JobRow{ID: 42, ScheduledAt: at}}, nil)

	id, err := newTestEnqueuer(q).Enqueue(context.Background(), "fire", nil, ScheduledAt(at), MaxAttempts(1))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	q.AssertExpectations(t)
}

func TestEnqueuer_EnqueueError(t *testing.T) {
	t.Parallel()

	q := &mockQueue{}
	q.On("Insert", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := newTestEnqueuer(q).Enqueue(context.Background(), "fire", nil)
	require.ErrorContains(t, err, "db down")
}

func TestEnqueuer_EnqueueDuplicate(t *testing.T) {
	t.Parallel()

	q := &mockQueue{}
	q.On("Insert", mock.Anything, mock.Anything, mock.Anything).Return(&rivertype.JobInsertResult{
		Job:                      &rivertype.JobRow{ID: 7},
		UniqueSkippedAsDuplicate: true,
	}, nil)

	id, err := newTestEnqueuer(q).Enqueue(context.Background(), "fire", nil, UniqueKey("fire"))
	require.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, int64(7), id)
}

func TestEnqueuer_PendingPages(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	full := make([]*rivertype.JobRow, 0, listPageSize)
	for i := range listPageSize {
		task := "sweep"
		if i == 0 {
			task = "fire"
		}
		full = append(full, row(t, int64(i+1), task, base.Add(time.Duration(i)*time.Minute)))
	}

	q := &mockQueue{}
	q.On("JobList", mock.Anything, mock.Anything).Return(&river.JobListResult{
		Jobs:       full,
		LastCursor: river.JobListCursorFromJob(full[len(full)-1]),
	}, nil).Once()
	q.On("JobList", mock.Anything, mock.Anything).Return(&river.JobListResult{
		Jobs: []*rivertype.JobRow{row(t, 9999, "fire", base.Add(-time.Hour))},
	}, nil).Once()

	pending, err := newTestEnqueuer(q).Pending(context.Background(), "fire")
	require.NoError(t, err)
	require.Len(t, pending, 2, "jobs past the first page are listed")
	assert.Equal(t, int64(9999), pending[0].ID)
	assert.Equal(t, int64(1), pending[1].ID)
	q.AssertNumberOfCalls(t, "JobList", 2)
}

func TestEnqueuer_Pending(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	q := &mockQueue{}
	q.On("JobList", mock.Anything, mock.Anything).Return(&river.JobListResult{
		Jobs: []*rivertype.JobRow{
			row(t, 3, "fire", base.Add(time.Hour)),
			row(t, 1, "sweep", base),
			{ID: 9, Kind: taskKind, EncodedArgs: []byte("{broken")},
			row(t, 2, "fire", base),
		},
	}, nil)

	pending, err := newTestEnqueuer(q).Pending(context.Background(), "fire")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(2), pending[0].ID)
	assert.Equal(t, int64(3), pending[1].ID)
	assert.Equal(t, "fire", pending[0].Task)
}

func TestEnqueuer_Cancel(t *testing.T) {
	t.Parallel()

	q := &mockQueue{}
	q.On("JobCancel", mock.Anything, int64(1)).Return(&rivertype.JobRow{ID: 1}, nil)
	q.On("JobCancel", mock.Anything, int64(2)).Return(nil, rivertype.ErrNotFound)
	q.On("JobCancel", mock.Anything, int64(3)).Return(nil, errors.New("db down"))

	e := newTestEnqueuer(q)
	require.NoError(t, e.Cancel(context.Background(), 1))
	require.NoError(t, e.Cancel(context.Background(), 2))
	require.ErrorContains(t, e.Cancel(context.Background(), 3), "db down")
}
