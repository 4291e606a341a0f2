// Package logger builds the service's slog loggers.
//
// Loggers wrap a JSON or text handler in a LogHandlerDecorator that adds
// context-scoped attributes on every call. Two extractors ship with the
// package: RunIDExtractor tags everything logged during a merge run with its
// run_id, and RequestIDExtractor tags HTTP handling with request_id.
//
//	ctx = logger.WithRunID(ctx, run.ID)
//	log.InfoContext(ctx, "merge run started")
//	// {"level":"INFO","msg":"merge run started","run_id":"0190..."}
//
// NewWithSentry additionally forwards warnings and errors to Sentry when a
// DSN is configured and falls back to stdout-only logging otherwise.
//
// NewNope returns a logger that discards everything. Packages use it as the
// default when no logger is injected.
package logger
