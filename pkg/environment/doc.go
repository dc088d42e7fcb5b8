// Package environment provides simple helpers to propagate the current
// application environment (development, staging, production) through
// context.Context and structured logs.
//
// The email queue's behavior differs by environment in exactly one place:
// the test-environment recipient filter only rewrites recipient lists
// outside production. This package is the single source of truth for what
// "production" means, so that check never drifts between components.
//
// # Usage
//
//	ctx := environment.WithContext(ctx, environment.Production)
//	if environment.IsProduction(ctx) {
//	    // production-specific behaviour
//	}
//
// Add the environment to an slog logger via LoggerExtractor.
//
// # Error Handling
//
// All helpers are allocation-free and never return errors. Missing values
// result in the zero value ("").
package environment
