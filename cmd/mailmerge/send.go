package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mailmerge"
	"github.com/dmitrymomot/mailmerge/pkg/db"
	"github.com/dmitrymomot/mailmerge/pkg/kvstore"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
	"github.com/dmitrymomot/mailmerge/pkg/runlog"
	"github.com/dmitrymomot/mailmerge/pkg/settings"
)

// send runs one merge from a YAML configuration file and exits.
// Outcomes go to Postgres when DATABASE_URL is set, otherwise to stdout as
// JSON lines.
func send(ctx context.Context, cfg config, args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	file := fs.String("config", "mailmerge.yaml", "merge configuration file")
	source := fs.String("source", "", "dataset name, overrides the file")
	test := fs.Bool("test", false, "send a single test message instead of the merge")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mergeCfg, err := readMergeConfig(*file)
	if err != nil {
		return err
	}
	if *source != "" {
		mergeCfg.Source = *source
	}

	log := newLogger(cfg)

	sender, err := newSender(cfg)
	if err != nil {
		return err
	}
	m := mailer.New(sender, cfg.Mailer)

	sources, archiver, err := newSources(cfg)
	if err != nil {
		return err
	}

	var (
		outcomes    merge.OutcomeLogger = runlog.NewJSONLines(os.Stdout)
		diagnostics merge.Diagnostics   = runlog.NewSlog(log)
	)
	if hasDatabase() {
		dbCfg, err := loadDBConfig()
		if err != nil {
			return fmt.Errorf("database config: %w", err)
		}
		pool, err := db.Connect(ctx, dbCfg)
		if err != nil {
			return err
		}
		defer func() { _ = db.Shutdown(pool)(context.WithoutCancel(ctx)) }()

		if err := db.Migrate(ctx, pool, dbCfg.MigrationsTable, log); err != nil {
			return err
		}
		pg := runlog.NewPostgres(db.SQL(pool), runlog.WithLogger(log))
		outcomes = pg
		diagnostics = runlog.Tee(pg, diagnostics)
	}

	svc := mailmerge.New(newEngine(m, outcomes, archiver, diagnostics, log), m, sources, settings.New(kvstore.NewMemory()),
		mailmerge.WithDiagnostics(diagnostics),
		mailmerge.WithLogger(log),
		mailmerge.WithTestRecipient(cfg.TestRecipient),
	)

	var res mailmerge.Result
	if *test {
		res = svc.SendTest(ctx, mergeCfg)
	} else {
		res = svc.SendNow(ctx, mergeCfg)
	}

	fmt.Fprintln(os.Stderr, res.Message)
	if !res.OK() {
		return errors.New(res.Message)
	}
	return nil
}

func readMergeConfig(path string) (merge.Config, error) {
	var cfg merge.Config

	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	return cfg, decodeMergeConfig(f, &cfg)
}

func decodeMergeConfig(r io.Reader, cfg *merge.Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse merge config: %w", err)
	}
	return nil
}
