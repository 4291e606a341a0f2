package mailmerge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
	"github.com/dmitrymomot/mailmerge/pkg/schedule"
	"github.com/dmitrymomot/mailmerge/pkg/settings"
	"github.com/dmitrymomot/mailmerge/pkg/sheet"
)

// TestSubject is the subject of messages sent by SendTest.
const TestSubject = "Mail merge test"

const (
	stackSize           = 4096
	defaultPollInterval = time.Second
)

// RunLog reads back the outcomes of a run.
// *runlog.Postgres and *runlog.Memory satisfy it.
type RunLog interface {
	Outcomes(ctx context.Context, runID string) ([]merge.Outcome, error)
}

// Service runs, schedules and configures merges.
type Service struct {
	engine        *merge.Engine
	dispatcher    merge.Dispatcher
	sources       sheet.Opener
	settings      *settings.Settings
	registry      schedule.Registry
	scheduler     *schedule.Scheduler
	runs          RunLog
	diagnostics   merge.Diagnostics
	logger        *slog.Logger
	now           func() time.Time
	testRecipient string
	pollInterval  time.Duration
}

// New creates a Service. The dispatcher is used for test sends; merge runs
// go through the engine.
func New(engine *merge.Engine, dispatcher merge.Dispatcher, sources sheet.Opener, st *settings.Settings, opts ...Option) *Service {
	s := &Service{
		engine:      engine,
		dispatcher:  dispatcher,
		sources:     sources,
		settings:    st,
		registry:    schedule.NewMemoryRegistry(),
		diagnostics:  nopDiagnostics{},
		logger:       logger.NewNope(),
		now:          time.Now,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.scheduler = schedule.New(s.registry, st, s,
		schedule.WithLogger(s.logger),
		schedule.WithDiagnostics(s.diagnostics),
		schedule.WithClock(s.now),
	)
	return s
}

// Scheduler returns the scheduler, for registering its job tasks.
func (s *Service) Scheduler() *schedule.Scheduler {
	return s.scheduler
}

// Run fires schedules held by the in-process registry until ctx is done.
// With any other registry the job worker fires them and Run only waits.
func (s *Service) Run(ctx context.Context) error {
	mem, ok := s.registry.(*schedule.MemoryRegistry)
	if !ok {
		<-ctx.Done()
		return nil
	}
	s.logger.InfoContext(ctx, "in-process scheduler started", slog.Duration("interval", s.pollInterval))
	return mem.Run(ctx, s.scheduler, s.pollInterval)
}

// RunMerge loads the dataset named by cfg.Source and runs the merge.
// The run outlives ctx: a disconnected client or an expired job deadline
// does not stop it.
func (s *Service) RunMerge(ctx context.Context, cfg merge.Config) (*merge.Run, error) {
	if cfg.Source == "" {
		return nil, ErrSourceRequired
	}
	ctx = context.WithoutCancel(ctx)

	src, err := s.sources.Open(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Source, err)
	}
	headers, err := src.Headers(ctx)
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	return s.engine.Run(ctx, cfg, headers, rows)
}

// SendNow runs the merge immediately.
func (s *Service) SendNow(ctx context.Context, cfg merge.Config) (res Result) {
	ctx = context.WithoutCancel(ctx)
	defer s.recover(ctx, "send", &res)

	run, err := s.RunMerge(ctx, cfg)
	if err != nil && run == nil {
		return s.fail(ctx, "failed to send emails", err)
	}

	res = success(fmt.Sprintf("Emails processed: %d sent, %d failed, %d skipped. Check the run log for details.",
		run.Count(merge.StatusSuccess), run.Count(merge.StatusFailed), run.Count(merge.StatusSkipped)))
	if err != nil {
		// Every row was attempted but the outcome log could not be written.
		res = s.fail(ctx, "emails processed but the run log could not be written", err)
	}
	res.Run = summarize(run)
	return res
}

// SendTest sends the configured body to the test recipient with the default
// cc and bcc. No row data and no attachment are involved.
func (s *Service) SendTest(ctx context.Context, cfg merge.Config) (res Result) {
	defer s.recover(ctx, "send test", &res)

	if s.testRecipient == "" {
		return s.fail(ctx, "failed to send test email", ErrNoTestRecipient)
	}

	body, err := mailer.BodyHTML(string(cfg.BodyFormat), cfg.Body)
	if err != nil {
		return s.fail(ctx, "failed to send test email", err)
	}

	err = s.dispatcher.Send(ctx, &mailer.Email{
		To:      []string{s.testRecipient},
		CC:      mailer.SplitAddresses(cfg.DefaultCC),
		BCC:     mailer.SplitAddresses(cfg.DefaultBCC),
		Subject: TestSubject,
		HTML:    body,
		ReplyTo: cfg.ReplyTo,
		From:    cfg.From,
		Tags:    mailer.SimpleTags("test"),
	})
	if err != nil {
		return s.fail(ctx, "failed to send test email", err)
	}
	return success("Test email sent to " + s.testRecipient + ".")
}

// Schedule registers a one-shot run of cfg at the given instant.
func (s *Service) Schedule(ctx context.Context, at time.Time, cfg merge.Config) (res Result) {
	defer s.recover(ctx, "schedule", &res)

	if cfg.Source == "" {
		return s.fail(ctx, "failed to schedule", ErrSourceRequired)
	}

	inv, err := s.scheduler.Schedule(ctx, at, cfg)
	switch {
	case errors.Is(err, schedule.ErrInvalidScheduleTime):
		return failure("Schedule time must be in the future.")
	case errors.Is(err, schedule.ErrAlreadyScheduled):
		return failure("A send is already scheduled. Cancel it first.")
	case err != nil:
		return s.fail(ctx, "failed to schedule", err)
	}

	res = success("Emails scheduled for " + inv.At.Format(time.RFC1123) + ".")
	res.Schedule = &inv
	return res
}

// CancelSchedule cancels the pending scheduled run, if any.
func (s *Service) CancelSchedule(ctx context.Context) (res Result) {
	defer s.recover(ctx, "cancel schedule", &res)

	if err := s.scheduler.Cancel(ctx); err != nil {
		return s.fail(ctx, "failed to cancel schedule", err)
	}
	return success("Scheduled send cancelled.")
}

// ScheduleStatus reports the pending scheduled run.
func (s *Service) ScheduleStatus(ctx context.Context) (res Result) {
	defer s.recover(ctx, "schedule status", &res)

	inv, err := s.scheduler.Status(ctx)
	if err != nil {
		return s.fail(ctx, "failed to read schedule", err)
	}
	if inv == nil {
		return success("Nothing is scheduled.")
	}

	res = success("Emails scheduled for " + inv.At.Format(time.RFC1123) + ".")
	res.Schedule = inv
	return res
}

// SaveConfig stores cfg as the last-used configuration.
func (s *Service) SaveConfig(ctx context.Context, cfg merge.Config) (res Result) {
	defer s.recover(ctx, "save config", &res)

	if err := s.settings.SaveConfig(ctx, cfg); err != nil {
		return s.fail(ctx, "failed to save settings", err)
	}
	return success("Settings saved.")
}

// LoadConfig returns the last-used configuration. A missing configuration is
// a success without payload.
func (s *Service) LoadConfig(ctx context.Context) (res Result) {
	defer s.recover(ctx, "load config", &res)

	cfg, err := s.settings.LoadConfig(ctx)
	if errors.Is(err, settings.ErrNotFound) {
		return success("No saved settings.")
	}
	if err != nil {
		return s.fail(ctx, "failed to load settings", err)
	}

	res = success("Settings loaded.")
	res.Config = &cfg
	return res
}

// SaveTemplate stores a named message body.
func (s *Service) SaveTemplate(ctx context.Context, name, body string) (res Result) {
	defer s.recover(ctx, "save template", &res)

	if err := s.settings.SaveTemplate(ctx, name, body); err != nil {
		return s.fail(ctx, "failed to save template", err)
	}
	return success("Template saved.")
}

// LoadTemplates returns every saved template.
func (s *Service) LoadTemplates(ctx context.Context) (res Result) {
	defer s.recover(ctx, "load templates", &res)

	t, err := s.settings.Templates(ctx)
	if err != nil {
		return s.fail(ctx, "failed to load templates", err)
	}

	res = success(fmt.Sprintf("%d templates.", len(t)))
	res.Templates = t
	return res
}

// DeleteTemplate removes a named template.
func (s *Service) DeleteTemplate(ctx context.Context, name string) (res Result) {
	defer s.recover(ctx, "delete template", &res)

	if err := s.settings.DeleteTemplate(ctx, name); err != nil {
		return s.fail(ctx, "failed to delete template", err)
	}
	return success("Template deleted.")
}

// Headers returns the header row of a dataset.
func (s *Service) Headers(ctx context.Context, source string) (res Result) {
	defer s.recover(ctx, "headers", &res)

	if source == "" {
		return s.fail(ctx, "failed to read column headers", ErrSourceRequired)
	}
	src, err := s.sources.Open(ctx, source)
	if err != nil {
		return s.fail(ctx, "failed to read column headers", err)
	}
	headers, err := src.Headers(ctx)
	if err != nil {
		return s.fail(ctx, "failed to read column headers", err)
	}

	res = success(fmt.Sprintf("%d columns.", len(headers)))
	res.Headers = headers
	return res
}

// Sources lists the datasets available to merges.
func (s *Service) Sources(ctx context.Context) (res Result) {
	defer s.recover(ctx, "sources", &res)

	lister, ok := s.sources.(sheet.Lister)
	if !ok {
		return s.fail(ctx, "failed to list datasets", ErrListUnsupported)
	}
	names, err := lister.Names(ctx)
	if err != nil {
		return s.fail(ctx, "failed to list datasets", err)
	}

	res = success(fmt.Sprintf("%d datasets.", len(names)))
	res.Sources = names
	return res
}

// RunOutcomes returns the logged outcomes of a run in row order.
func (s *Service) RunOutcomes(ctx context.Context, runID string) (res Result) {
	defer s.recover(ctx, "run outcomes", &res)

	if s.runs == nil {
		return s.fail(ctx, "failed to read run log", ErrNoRunLog)
	}
	outcomes, err := s.runs.Outcomes(ctx, runID)
	if err != nil {
		return s.fail(ctx, "failed to read run log", err)
	}
	if len(outcomes) == 0 {
		return failure("Run " + runID + " not found.")
	}

	run := &merge.Run{ID: runID, Outcomes: outcomes}
	res = success(fmt.Sprintf("Run %s: %d sent, %d failed, %d skipped.", runID,
		run.Count(merge.StatusSuccess), run.Count(merge.StatusFailed), run.Count(merge.StatusSkipped)))
	res.Run = summarize(run)
	res.Outcomes = outcomes
	return res
}

func (s *Service) fail(ctx context.Context, message string, err error) Result {
	s.diagnostics.Record(ctx, message, err)
	s.logger.ErrorContext(ctx, message, slog.Any("error", err))
	return failure(fmt.Sprintf("%s: %v", message, err))
}

func (s *Service) recover(ctx context.Context, op string, res *Result) {
	p := recover()
	if p == nil {
		return
	}

	stack := make([]byte, stackSize)
	stack = stack[:runtime.Stack(stack, false)]
	s.logger.ErrorContext(ctx, "panic recovered",
		slog.String("op", op),
		slog.Any("panic", p),
		slog.String("stack", string(stack)),
	)

	err := fmt.Errorf("%w: %v", ErrUnexpectedFailure, p)
	s.diagnostics.Record(ctx, op+": unexpected failure", err)
	*res = failure(op + " failed: " + err.Error())
}

type nopDiagnostics struct{}

func (nopDiagnostics) Record(context.Context, string, error) {}

var _ schedule.Runner = (*Service)(nil)
