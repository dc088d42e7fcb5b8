// Package emailqueue provides a durable, at-least-once email dispatch queue:
// callers enqueue rendered messages, and a separate dispatcher periodically
// claims due messages, sends them through a transport, and records the
// outcome.
//
// The package is organised around three main components:
//
//   - Builder     — assembles a Message from a Template and persists it as queued
//   - Dispatcher  — claims due messages, sends them, and records terminal status
//   - Storage     — the persisted message collection with atomic status transitions
//
// Components interact only through small storage interfaces, keeping the
// queue logic decoupled from persistence. Two implementations ship with the
// package: MemoryStorage for tests and local development, and PostgresStorage
// backed by pgx for production.
//
// # State machine
//
// A message moves only forward: queued → in-progress → sent or failed.
// ClaimMessage is the sole synchronization point between concurrent
// dispatcher runs; it is an atomic conditional update, so a message claimed
// by one run reports ErrAlreadyClaimed to every other run. Terminal statuses
// are never left automatically: failed messages are not retried, and a
// message stuck in-progress after a crash requires an administrative reset.
//
// # Usage
//
// Enqueue a message:
//
//	b, _ := emailqueue.NewBuilder(storage)
//	msg, err := b.Enqueue(ctx, WelcomeEmail{UserEmail: "user@example.com"},
//	    emailqueue.WithDelay(time.Hour),
//	)
//
// Process due messages (typically from a cron-invoked CLI):
//
//	d, _ := emailqueue.NewDispatcher(storage, transport, cfg)
//	report, err := d.Run(ctx)
//
// # Error Handling
//
// Package-level sentinel errors (ErrAlreadyClaimed, ErrMissingRecipient,
// ErrNoOverrideAddress, ...) signal violations of queue invariants and can be
// checked with errors.Is. Per-message send failures are recorded on the
// message and reported in the RunReport; they never fail the run itself.
package emailqueue
