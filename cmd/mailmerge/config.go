package main

import (
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/mailmerge/internal/api"
	"github.com/dmitrymomot/mailmerge/pkg/db"
	"github.com/dmitrymomot/mailmerge/pkg/logger"
	"github.com/dmitrymomot/mailmerge/pkg/mailer"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/resend"
	"github.com/dmitrymomot/mailmerge/pkg/mailer/ses"
	"github.com/dmitrymomot/mailmerge/pkg/storage"
)

const (
	providerResend = "resend"
	providerSES    = "ses"
)

// config is the process configuration, read from the environment.
type config struct {
	Log     logger.Config
	Sentry  logger.SentryConfig
	HTTP    api.Config
	Mailer  mailer.Config
	Resend  resend.Config
	SES     ses.Config
	Storage storage.Config

	Provider string `env:"MAILER_PROVIDER" envDefault:"resend"`

	RedisURL    string `env:"REDIS_URL"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"mailmerge"`

	// Datasets come from object storage under SourcePrefix when a bucket is
	// configured, otherwise from SourceDir.
	SourceDir    string `env:"MAILMERGE_SOURCE_DIR" envDefault:"./data"`
	SourcePrefix string `env:"MAILMERGE_SOURCE_PREFIX" envDefault:"sources"`

	TestRecipient string `env:"MAILMERGE_TEST_RECIPIENT"`
}

func loadConfig() (config, error) {
	var cfg config
	err := env.Parse(&cfg)
	return cfg, err
}

// loadDBConfig parses the database settings. DATABASE_URL is required.
func loadDBConfig() (db.Config, error) {
	var cfg db.Config
	err := env.Parse(&cfg)
	return cfg, err
}

func hasDatabase() bool {
	return os.Getenv("DATABASE_URL") != ""
}
