package pg

import "context"

// logger is the slice of slog's surface the migration runner needs, so any
// structured logger can be passed without importing slog here.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}
