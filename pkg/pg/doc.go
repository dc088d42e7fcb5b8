// Package pg provides the PostgreSQL plumbing for the email queue: pooled
// connectivity via pgx/v5, schema migrations via goose/v3, a health check,
// and common error helpers.
//
// The queue's storage layer only needs a *pgxpool.Pool; this package owns
// how that pool is configured, opened, and kept healthy so the storage code
// stays free of connection concerns.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    return err
//	}
//
// # Configuration
//
// All values come from environment variables; see the field tags on Config
// for names and defaults.
//
// # Error Handling
//
// Helpers such as IsNotFoundError and IsDuplicateKeyError classify pgx
// errors so storage code can branch without touching pgconn internals.
package pg
