package emailqueue

import (
	"context"

	"github.com/google/uuid"
)

// EnqueueStorage defines the persistence operations the Builder needs.
type EnqueueStorage interface {
	// CreateMessage persists a new message. Status is forced to queued on
	// create regardless of what the caller set.
	CreateMessage(ctx context.Context, msg *Message) error

	// FindByUniqueKey returns the message created by templateClass with the
	// given unique key, or ErrMessageNotFound. The (templateClass, uniqueKey)
	// pair is a query capability, not a store-enforced constraint: callers
	// using it for once-only semantics accept the check-then-insert race
	// window.
	FindByUniqueKey(ctx context.Context, templateClass, uniqueKey string) (*Message, error)
}

// DispatchStorage defines the persistence operations the Dispatcher needs.
type DispatchStorage interface {
	// FindDue returns up to limit queued messages whose sending schedule has
	// passed. Order is unspecified; callers must not rely on it. A limit of
	// zero means no limit.
	FindDue(ctx context.Context, limit int) ([]Message, error)

	// CountScheduled returns the number of queued messages scheduled for a
	// later time, for run reporting.
	CountScheduled(ctx context.Context) (int, error)

	// ClaimMessage atomically transitions a message from queued to
	// in-progress. It must be a single conditional update so concurrent
	// dispatcher runs can never both claim the same message; when the
	// message is not currently queued it returns ErrAlreadyClaimed.
	ClaimMessage(ctx context.Context, id uuid.UUID) error

	// MarkSent unconditionally writes the sent terminal status. Idempotent:
	// marking an already-sent message is a no-op.
	MarkSent(ctx context.Context, id uuid.UUID) error

	// MarkFailed unconditionally writes the failed terminal status.
	// Idempotent like MarkSent.
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// QueryStorage defines diagnostic and reporting queries.
type QueryStorage interface {
	// FindScheduled returns queued messages whose sending schedule is still
	// in the future. A limit of zero means no limit.
	FindScheduled(ctx context.Context, limit int) ([]Message, error)

	// FindByStatus returns messages in the given status. A limit of zero
	// means no limit.
	FindByStatus(ctx context.Context, status Status, limit int) ([]Message, error)
}

// Storage combines all persistence interfaces. Concrete implementations
// (MemoryStorage, PostgresStorage) satisfy the full set; components depend
// only on the slice they use.
type Storage interface {
	EnqueueStorage
	DispatchStorage
	QueryStorage
}
