package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailmerge"
	"github.com/dmitrymomot/mailmerge/internal/api"
	"github.com/dmitrymomot/mailmerge/pkg/db"
	"github.com/dmitrymomot/mailmerge/pkg/health"
	"github.com/dmitrymomot/mailmerge/pkg/job"
	"github.com/dmitrymomot/mailmerge/pkg/kvstore"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
	"github.com/dmitrymomot/mailmerge/pkg/runlog"
	"github.com/dmitrymomot/mailmerge/pkg/schedule"
	"github.com/dmitrymomot/mailmerge/pkg/settings"
	"github.com/dmitrymomot/mailmerge/pkg/sheet"
)

// deps are the collaborators shared by both serve modes.
type deps struct {
	log      *slog.Logger
	mailer   *mailer.Mailer
	sources  sheet.Opener
	archiver merge.Archiver
	store    kvstore.Store
	checks   health.Checks
	hooks    []api.Option
}

// serve runs the HTTP API and the scheduler. With DATABASE_URL set,
// scheduled merges are River jobs and outcomes go to Postgres. Without it,
// schedules and the run log live in process memory.
func serve(ctx context.Context, cfg config) error {
	d := deps{log: newLogger(cfg), checks: health.Checks{}}

	store, redisClient, err := newStore(ctx, cfg, d.log)
	if err != nil {
		return err
	}
	d.store = store
	if redisClient != nil {
		d.checks["redis"] = kvstore.Healthcheck(redisClient)
		d.hooks = append(d.hooks, api.WithShutdownHook(kvstore.Shutdown(redisClient)))
	}

	sender, err := newSender(cfg)
	if err != nil {
		return err
	}
	d.mailer = mailer.New(sender, cfg.Mailer)

	d.sources, d.archiver, err = newSources(cfg)
	if err != nil {
		return err
	}

	if !hasDatabase() {
		return serveInProcess(ctx, cfg, d)
	}
	return serveWithDatabase(ctx, cfg, d)
}

func serveInProcess(ctx context.Context, cfg config, d deps) error {
	d.log.WarnContext(ctx, "DATABASE_URL is not set, schedules and run log are kept in memory")

	runLog := runlog.NewMemory()
	diagnostics := runlog.Tee(runLog, runlog.NewSlog(d.log))
	engine := newEngine(d.mailer, runLog, d.archiver, diagnostics, d.log)

	svc := mailmerge.New(engine, d.mailer, d.sources, settings.New(d.store),
		mailmerge.WithRunLog(runLog),
		mailmerge.WithDiagnostics(diagnostics),
		mailmerge.WithLogger(d.log),
		mailmerge.WithTestRecipient(cfg.TestRecipient),
	)

	srv := api.New(svc, cfg.HTTP, append([]api.Option{
		api.WithLogger(d.log),
		api.WithHealthChecks(d.checks),
	}, d.hooks...)...)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(ctx)
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})
	return g.Wait()
}

func serveWithDatabase(ctx context.Context, cfg config, d deps) error {
	dbCfg, err := loadDBConfig()
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	pool, err := db.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx, pool, dbCfg.MigrationsTable, d.log); err != nil {
		return err
	}
	if err := db.MigrateRiver(ctx, pool); err != nil {
		return err
	}

	runLog := runlog.NewPostgres(db.SQL(pool), runlog.WithLogger(d.log))
	diagnostics := runlog.Tee(runLog, runlog.NewSlog(d.log))
	engine := newEngine(d.mailer, runLog, d.archiver, diagnostics, d.log)

	enqueuer, err := job.NewEnqueuer(pool, job.WithEnqueuerLogger(d.log))
	if err != nil {
		return err
	}

	svc := mailmerge.New(engine, d.mailer, d.sources, settings.New(d.store),
		mailmerge.WithRegistry(schedule.NewJobRegistry(enqueuer)),
		mailmerge.WithRunLog(runLog),
		mailmerge.WithDiagnostics(diagnostics),
		mailmerge.WithLogger(d.log),
		mailmerge.WithTestRecipient(cfg.TestRecipient),
	)

	manager, err := job.NewManager(pool,
		job.WithLogger(d.log),
		job.WithTask(schedule.NewFireTask(svc.Scheduler())),
		job.WithScheduledTask(schedule.NewSweepTask(svc.Scheduler())),
	)
	if err != nil {
		return err
	}

	d.checks["postgres"] = db.Healthcheck(pool)
	d.checks["jobs"] = job.Healthcheck(manager)
	hooks := append([]api.Option{api.WithShutdownHook(manager.Shutdown())}, d.hooks...)
	hooks = append(hooks, api.WithShutdownHook(db.Shutdown(pool)))

	srv := api.New(svc, cfg.HTTP, append([]api.Option{
		api.WithLogger(d.log),
		api.WithHealthChecks(d.checks),
	}, hooks...)...)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return manager.Start(ctx)
	})
	g.Go(func() error {
		return srv.Run(ctx)
	})
	return g.Wait()
}
