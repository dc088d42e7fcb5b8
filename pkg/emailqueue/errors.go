package emailqueue

import "errors"

// Common errors
var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("storage cannot be nil")

	// ErrTransportNil is returned when a nil transport is provided.
	ErrTransportNil = errors.New("transport cannot be nil")

	// ErrTemplateNil is returned when attempting to enqueue a nil template.
	ErrTemplateNil = errors.New("template cannot be nil")

	// ErrMessageNotFound is returned when a message id or unique key matches
	// no stored message.
	ErrMessageNotFound = errors.New("message not found")

	// ErrMessageExists is returned when creating a message whose id is
	// already present in storage.
	ErrMessageExists = errors.New("message already exists")

	// ErrAlreadyClaimed is returned by ClaimMessage when the message is not
	// currently queued: another dispatcher run claimed it first, or it has
	// already reached a terminal status. It is an expected race outcome, not
	// a failure, and is logged at debug level at most.
	ErrAlreadyClaimed = errors.New("message already claimed")

	// ErrMissingRecipient is returned when a message has no resolvable "to"
	// recipient and no fallback address is available.
	ErrMissingRecipient = errors.New("message has no recipient and no fallback address is configured")

	// ErrEnqueueCanceled is returned when a before-enqueue hook vetoes
	// queuing. No message is persisted.
	ErrEnqueueCanceled = errors.New("enqueue canceled by hook")

	// ErrSendCanceled is returned when a before-send hook vetoes the send.
	// The message is marked failed so the veto is terminal.
	ErrSendCanceled = errors.New("send canceled by hook")

	// ErrNoOverrideAddress is returned when test-environment filtering
	// removes every recipient and no override address is configured.
	ErrNoOverrideAddress = errors.New("no override address configured for test environment")

	// ErrWrongInvocationContext is returned when the dispatch command is
	// invoked from an interactive or web context instead of a scheduler.
	ErrWrongInvocationContext = errors.New("dispatcher can only run in a non-interactive context")

	// ErrInvalidLimit is returned when a query limit is negative.
	ErrInvalidLimit = errors.New("limit cannot be negative")
)

// IsNotFound reports whether err indicates a missing message, for consistent
// "not found" handling across storage implementations.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMessageNotFound)
}
