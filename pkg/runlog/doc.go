// Package runlog stores what merge runs did.
//
// Two logs are kept. The outcome log receives one record per processed row,
// appended once at the end of each run. The diagnostic log receives
// timestamped error text for every recoverable failure, including failures
// that leave no outcome behind, such as a scheduled run with no saved
// configuration.
//
// Postgres implements both over database/sql (the merge_outcomes and
// merge_errors tables created by db.Migrate). Slog writes diagnostics to a
// structured logger, Tee fans diagnostics out, JSONLines streams outcomes to
// a writer and Memory keeps everything in process for tests.
package runlog
