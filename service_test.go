package mailmerge_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge"
	"github.com/dmitrymomot/mailmerge/pkg/kvstore"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
	"github.com/dmitrymomot/mailmerge/pkg/runlog"
	"github.com/dmitrymomot/mailmerge/pkg/schedule"
	"github.com/dmitrymomot/mailmerge/pkg/settings"
	"github.com/dmitrymomot/mailmerge/pkg/sheet"
)

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

const customers = "Email,Name,Plan\n" +
	"ann@example.com,Ann,pro\n" +
	"bob@example.com,Bob,free\n" +
	",Nobody,pro\n"

type outbox struct {
	err   error
	sent  []*mailer.Email
	mu    sync.Mutex
	panic bool
}

func (o *outbox) Send(_ context.Context, email *mailer.Email) error {
	if o.panic {
		panic("provider exploded")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	if len(email.To) == 0 {
		return mailer.ErrNoRecipient
	}
	o.sent = append(o.sent, email)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sent)
}

type fixture struct {
	svc      *mailmerge.Service
	outbox   *outbox
	log      *runlog.Memory
	settings *settings.Settings
}

func newFixture(t *testing.T, opts ...mailmerge.Option) *fixture {
	t.Helper()

	box := &outbox{}
	log := runlog.NewMemory()
	st := settings.New(kvstore.NewMemory())
	sources := sheet.NewFSOpener(fstest.MapFS{
		"customers.csv": {Data: []byte(customers)},
	})

	engine := merge.NewEngine(box, log,
		merge.WithDiagnostics(log),
		merge.WithClock(func() time.Time { return testNow }),
	)

	opts = append([]mailmerge.Option{
		mailmerge.WithDiagnostics(log),
		mailmerge.WithClock(func() time.Time { return testNow }),
		mailmerge.WithTestRecipient("me@example.com"),
	}, opts...)

	return &fixture{
		svc:      mailmerge.New(engine, box, sources, st, opts...),
		outbox:   box,
		log:      log,
		settings: st,
	}
}

func config() merge.Config {
	return merge.Config{
		Source:         "customers",
		ToColumn:       "Email",
		DefaultSubject: "Hello",
		DefaultCC:      "team@example.com",
		Body:           "<p>Hi</p>",
	}
}

func TestService_SendNow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res := f.svc.SendNow(context.Background(), config())

	require.True(t, res.OK(), res.Message)
	require.NotNil(t, res.Run)
	assert.Equal(t, 3, res.Run.Rows)
	assert.Equal(t, 2, res.Run.Sent)
	assert.Equal(t, 1, res.Run.Failed)
	assert.Equal(t, 0, res.Run.Skipped)
	assert.Len(t, f.outbox.sent, 2)

	outcomes, err := f.log.Outcomes(context.Background(), res.Run.ID)
	require.NoError(t, err)
	assert.Len(t, outcomes, 3)
}

func TestService_SendNow_OutlivesRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := f.svc.SendNow(ctx, config())
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, 2, res.Run.Sent)

	outcomes, err := f.log.Outcomes(context.Background(), res.Run.ID)
	require.NoError(t, err)
	assert.Len(t, outcomes, 3)
}

func TestService_SendNow_Condition(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cfg := config()
	cfg.ConditionEnabled = true
	cfg.ConditionColumn = "Plan"
	cfg.ConditionOperator = merge.OpEquals
	cfg.ConditionValue = "pro"

	res := f.svc.SendNow(context.Background(), cfg)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, 1, res.Run.Sent)
	assert.Equal(t, 1, res.Run.Skipped)
	assert.Equal(t, 1, res.Run.Failed)
}

func TestService_SendNow_SourceErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	cfg := config()
	cfg.Source = ""
	res := f.svc.SendNow(context.Background(), cfg)
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "dataset source is required")

	cfg.Source = "missing"
	res = f.svc.SendNow(context.Background(), cfg)
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "dataset not found")

	assert.Len(t, f.log.Entries(), 2)
	assert.Empty(t, f.outbox.sent)
}

func TestService_SendTest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cfg := config()
	cfg.AttachmentEnabled = true
	cfg.ReplyTo = "support@example.com"

	res := f.svc.SendTest(context.Background(), cfg)
	require.True(t, res.OK(), res.Message)
	require.Len(t, f.outbox.sent, 1)

	email := f.outbox.sent[0]
	assert.Equal(t, []string{"me@example.com"}, email.To)
	assert.Equal(t, mailmerge.TestSubject, email.Subject)
	assert.Equal(t, []string{"team@example.com"}, email.CC)
	assert.Equal(t, "support@example.com", email.ReplyTo)
	assert.Equal(t, "<p>Hi</p>", email.HTML)
	assert.Empty(t, email.Attachments)
}

func TestService_SendTest_NoRecipient(t *testing.T) {
	t.Parallel()

	f := newFixture(t, mailmerge.WithTestRecipient(""))
	res := f.svc.SendTest(context.Background(), config())
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "test recipient is not configured")
}

func TestService_SendTest_DispatchError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.outbox.err = errors.New("quota exceeded")

	res := f.svc.SendTest(context.Background(), config())
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "quota exceeded")
	assert.Len(t, f.log.Entries(), 1)
}

func TestService_RecoversPanics(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.outbox.panic = true

	var res mailmerge.Result
	require.NotPanics(t, func() {
		res = f.svc.SendTest(context.Background(), config())
	})
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "provider exploded")
	assert.Len(t, f.log.Entries(), 1)
}

func TestService_ScheduleLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	res := f.svc.ScheduleStatus(ctx)
	require.True(t, res.OK())
	assert.Nil(t, res.Schedule)

	res = f.svc.Schedule(ctx, testNow.Add(-time.Minute), config())
	assert.False(t, res.OK())
	assert.Equal(t, "Schedule time must be in the future.", res.Message)

	at := testNow.Add(time.Hour)
	res = f.svc.Schedule(ctx, at, config())
	require.True(t, res.OK(), res.Message)
	require.NotNil(t, res.Schedule)
	assert.True(t, at.Equal(res.Schedule.At))

	res = f.svc.Schedule(ctx, at.Add(time.Hour), config())
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, "already scheduled")

	res = f.svc.ScheduleStatus(ctx)
	require.True(t, res.OK())
	require.NotNil(t, res.Schedule)

	res = f.svc.CancelSchedule(ctx)
	require.True(t, res.OK())

	res = f.svc.ScheduleStatus(ctx)
	require.True(t, res.OK())
	assert.Nil(t, res.Schedule)

	// Cancelling twice is fine.
	assert.True(t, f.svc.CancelSchedule(ctx).OK())
}

func TestService_ScheduleRequiresSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cfg := config()
	cfg.Source = ""

	res := f.svc.Schedule(context.Background(), testNow.Add(time.Hour), cfg)
	assert.False(t, res.OK())
	assert.Nil(t, f.svc.ScheduleStatus(context.Background()).Schedule)
}

func TestService_ScheduledRunFires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	require.True(t, f.svc.Schedule(ctx, testNow.Add(time.Hour), config()).OK())

	run, err := f.svc.Scheduler().Fire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Count(merge.StatusSuccess))
	assert.Len(t, f.outbox.sent, 2)

	_, err = f.settings.LoadSnapshot(ctx)
	require.ErrorIs(t, err, settings.ErrNotFound)
	assert.Nil(t, f.svc.ScheduleStatus(ctx).Schedule)
}

func TestService_Config(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	res := f.svc.LoadConfig(ctx)
	require.True(t, res.OK())
	assert.Nil(t, res.Config)

	cfg := config()
	require.True(t, f.svc.SaveConfig(ctx, cfg).OK())

	res = f.svc.LoadConfig(ctx)
	require.True(t, res.OK())
	require.NotNil(t, res.Config)
	assert.Equal(t, cfg, *res.Config)
}

func TestService_Templates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	require.True(t, f.svc.SaveTemplate(ctx, "welcome", "<p>Welcome</p>").OK())
	require.True(t, f.svc.SaveTemplate(ctx, "bye", "<p>Bye</p>").OK())

	res := f.svc.SaveTemplate(ctx, "  ", "x")
	assert.False(t, res.OK())

	res = f.svc.LoadTemplates(ctx)
	require.True(t, res.OK())
	assert.Equal(t, settings.Templates{"welcome": "<p>Welcome</p>", "bye": "<p>Bye</p>"}, res.Templates)

	require.True(t, f.svc.DeleteTemplate(ctx, "bye").OK())
	res = f.svc.LoadTemplates(ctx)
	assert.Equal(t, settings.Templates{"welcome": "<p>Welcome</p>"}, res.Templates)
}

func TestService_Headers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	res := f.svc.Headers(context.Background(), "customers")
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, []string{"Email", "Name", "Plan"}, res.Headers)

	res = f.svc.Headers(context.Background(), "missing")
	assert.False(t, res.OK())

	res = f.svc.Headers(context.Background(), "")
	assert.False(t, res.OK())
}

func TestService_RunFiresInProcessSchedules(t *testing.T) {
	t.Parallel()

	var clock atomic.Int64
	clock.Store(testNow.UnixNano())
	now := func() time.Time { return time.Unix(0, clock.Load()).UTC() }

	f := newFixture(t,
		mailmerge.WithClock(now),
		mailmerge.WithPollInterval(5*time.Millisecond),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.True(t, f.svc.Schedule(ctx, testNow.Add(time.Hour), config()).OK())

	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, f.outbox.count(), "nothing fires before the scheduled time")

	clock.Store(testNow.Add(2 * time.Hour).UnixNano())
	assert.Eventually(t, func() bool { return f.outbox.count() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Nil(t, f.svc.ScheduleStatus(context.Background()).Schedule)
}

type externalRegistry struct {
	*schedule.MemoryRegistry
}

func TestService_RunWaitsWithExternalRegistry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, mailmerge.WithRegistry(externalRegistry{schedule.NewMemoryRegistry()}))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.svc.Run(ctx) }()
	cancel()
	require.NoError(t, <-done)
}

func TestService_Sources(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res := f.svc.Sources(context.Background())
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, []string{"customers"}, res.Sources)
}

type openerOnly struct {
	sheet.Opener
}

func TestService_SourcesUnsupported(t *testing.T) {
	t.Parallel()

	engine := merge.NewEngine(&outbox{}, nil)
	svc := mailmerge.New(engine, &outbox{}, openerOnly{sheet.NewFSOpener(fstest.MapFS{})}, settings.New(kvstore.NewMemory()))

	res := svc.Sources(context.Background())
	assert.False(t, res.OK())
	assert.Contains(t, res.Message, mailmerge.ErrListUnsupported.Error())
}

func TestService_RunOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("reads the logged run", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f2 := newFixture(t, mailmerge.WithRunLog(f.log))
		sent := f.svc.SendNow(ctx, config())
		require.True(t, sent.OK())

		res := f2.svc.RunOutcomes(ctx, sent.Run.ID)
		require.True(t, res.OK(), res.Message)
		assert.Len(t, res.Outcomes, 3)
		assert.Equal(t, 1, res.Outcomes[0].Row)
		assert.Equal(t, *sent.Run, *res.Run)
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f = newFixture(t, mailmerge.WithRunLog(f.log))
		res := f.svc.RunOutcomes(ctx, "missing")
		assert.False(t, res.OK())
		assert.Contains(t, res.Message, "not found")
	})

	t.Run("no run log", func(t *testing.T) {
		t.Parallel()

		res := newFixture(t).svc.RunOutcomes(ctx, "any")
		assert.False(t, res.OK())
		assert.Contains(t, res.Message, mailmerge.ErrNoRunLog.Error())
	})
}
