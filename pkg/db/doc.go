// Package db holds the Postgres plumbing: a pgx pool with startup retries,
// the run-log schema migrations, the River queue schema and a database/sql
// bridge for code written against *sql.DB.
//
// Settings come from the environment (see Config):
//
//	DATABASE_URL                - connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - pool size (default: 10)
//	DATABASE_MIN_CONNS          - idle connections kept open (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - pool health check interval (default: 1m)
//	DATABASE_RETRY_ATTEMPTS     - connection attempts at startup (default: 3)
//	DATABASE_RETRY_INTERVAL     - base wait between attempts (default: 5s)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: schema_migrations)
//
// Typical startup:
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := db.Migrate(ctx, pool, cfg.MigrationsTable, log); err != nil {
//	    return err
//	}
//	if err := db.MigrateRiver(ctx, pool); err != nil {
//	    return err
//	}
package db
