package storage

import (
	"context"
	"io"
)

// Storage stores objects by key.
type Storage interface {
	// Put uploads size bytes from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get opens the object. The caller closes the reader.
	// Returns ErrNotFound for a missing key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Bucket    string `env:"STORAGE_BUCKET"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`

	// Endpoint is set for MinIO and other S3-compatible services.
	Endpoint string `env:"STORAGE_ENDPOINT"`

	// PathStyle addresses buckets as endpoint/bucket/key (required for MinIO).
	PathStyle bool `env:"STORAGE_PATH_STYLE"`
}

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

// Enabled reports whether a bucket has been configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	return nil
}
