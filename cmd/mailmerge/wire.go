package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailmerge/pkg/document"
	"github.com/dmitrymomot/mailmerge/pkg/kvstore"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/resend"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/ses"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
	"github.com/dmitrymomot/mailmerge/pkg/sheet"
	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

func newLogger(cfg config) *slog.Logger {
	return logger.NewWithSentry(cfg.Log, cfg.Sentry,
		logger.RunIDExtractor(),
		logger.RequestIDExtractor(),
	)
}

func newSender(cfg config) (mailer.Sender, error) {
	switch cfg.Provider {
	case providerResend:
		return resend.New(cfg.Resend)
	case providerSES:
		return ses.New(cfg.SES)
	default:
		return nil, fmt.Errorf("unknown mailer provider %q", cfg.Provider)
	}
}

// newSources returns the dataset opener and, when object storage is
// configured, the attachment archiver.
func newSources(cfg config) (sheet.Opener, merge.Archiver, error) {
	if !cfg.Storage.Enabled() {
		return sheet.NewFSOpener(os.DirFS(cfg.SourceDir)), nil, nil
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	return sheet.NewStorageOpener(store, cfg.SourcePrefix), document.NewArchiver(store), nil
}

// newStore connects to Redis when configured. Without Redis, settings live in
// process memory and are lost on restart.
func newStore(ctx context.Context, cfg config, log *slog.Logger) (kvstore.Store, redis.UniversalClient, error) {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL is not set, settings are kept in memory")
		return kvstore.NewMemory(), nil, nil
	}

	client, err := kvstore.Open(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return kvstore.NewRedis(client, kvstore.WithPrefix(cfg.RedisPrefix)), client, nil
}

func newEngine(d merge.Dispatcher, outcomes merge.OutcomeLogger, archiver merge.Archiver, diagnostics merge.Diagnostics, log *slog.Logger) *merge.Engine {
	opts := []merge.Option{
		merge.WithAttachments(document.NewRenderer(document.WithLogger(log))),
		merge.WithDiagnostics(diagnostics),
		merge.WithLogger(log),
	}
	if archiver != nil {
		opts = append(opts, merge.WithArchiver(archiver))
	}
	return merge.NewEngine(d, outcomes, opts...)
}
