package emailqueue

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
)

// MemoryStorage implements Storage for testing and local development. The
// claim path mirrors the conditional-update semantics of the Postgres
// implementation: the status check and transition happen under one lock, so
// concurrent claims on the same message resolve to exactly one winner.
type MemoryStorage struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]*Message
	byStatus map[Status][]uuid.UUID

	// Contact cache keyed by lower-cased address. A contact row is reused
	// across messages; a differing non-empty display name refreshes it.
	contacts map[string]contact.Contact
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		messages: make(map[uuid.UUID]*Message),
		byStatus: make(map[Status][]uuid.UUID),
		contacts: make(map[string]contact.Contact),
	}
}

// CreateMessage implements EnqueueStorage.
func (ms *MemoryStorage) CreateMessage(ctx context.Context, msg *Message) error {
	if msg == nil {
		return errors.New("message cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if _, exists := ms.messages[msg.ID]; exists {
		return ErrMessageExists
	}

	now := time.Now()
	msg.Status = StatusQueued
	if msg.SendingSchedule.IsZero() {
		msg.SendingSchedule = now
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.LastModifiedAt = now

	stored := copyMessage(msg)
	stored.From = ms.internContacts(msg.From)
	stored.To = ms.internContacts(msg.To)
	stored.CC = ms.internContacts(msg.CC)
	stored.BCC = ms.internContacts(msg.BCC)

	ms.messages[stored.ID] = stored
	ms.byStatus[StatusQueued] = append(ms.byStatus[StatusQueued], stored.ID)

	return nil
}

// FindByUniqueKey implements EnqueueStorage.
func (ms *MemoryStorage) FindByUniqueKey(ctx context.Context, templateClass, uniqueKey string) (*Message, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, msg := range ms.messages {
		if msg.TemplateClass == templateClass && msg.UniqueKey == uniqueKey {
			found := copyMessage(msg)
			return found, nil
		}
	}
	return nil, ErrMessageNotFound
}

// FindDue implements DispatchStorage.
func (ms *MemoryStorage) FindDue(ctx context.Context, limit int) ([]Message, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	now := time.Now()
	var due []Message
	for _, id := range ms.byStatus[StatusQueued] {
		msg := ms.messages[id]
		if msg.SendingSchedule.After(now) {
			continue
		}
		due = append(due, *copyMessage(msg))
		if limit > 0 && len(due) == limit {
			break
		}
	}
	return due, nil
}

// FindScheduled implements QueryStorage.
func (ms *MemoryStorage) FindScheduled(ctx context.Context, limit int) ([]Message, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	now := time.Now()
	var scheduled []Message
	for _, id := range ms.byStatus[StatusQueued] {
		msg := ms.messages[id]
		if !msg.SendingSchedule.After(now) {
			continue
		}
		scheduled = append(scheduled, *copyMessage(msg))
		if limit > 0 && len(scheduled) == limit {
			break
		}
	}
	return scheduled, nil
}

// CountScheduled implements DispatchStorage.
func (ms *MemoryStorage) CountScheduled(ctx context.Context) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	now := time.Now()
	count := 0
	for _, id := range ms.byStatus[StatusQueued] {
		if ms.messages[id].SendingSchedule.After(now) {
			count++
		}
	}
	return count, nil
}

// FindByStatus implements QueryStorage.
func (ms *MemoryStorage) FindByStatus(ctx context.Context, status Status, limit int) ([]Message, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []Message
	for _, id := range ms.byStatus[status] {
		out = append(out, *copyMessage(ms.messages[id]))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ClaimMessage implements DispatchStorage. The check and the transition
// share one critical section, the in-memory equivalent of
// "UPDATE ... WHERE id=? AND status='queued'".
func (ms *MemoryStorage) ClaimMessage(ctx context.Context, id uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	msg, exists := ms.messages[id]
	if !exists {
		return ErrMessageNotFound
	}
	if msg.Status != StatusQueued {
		return ErrAlreadyClaimed
	}

	ms.transitionLocked(msg, StatusInProgress)
	return nil
}

// MarkSent implements DispatchStorage.
func (ms *MemoryStorage) MarkSent(ctx context.Context, id uuid.UUID) error {
	return ms.markTerminal(id, StatusSent)
}

// MarkFailed implements DispatchStorage.
func (ms *MemoryStorage) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return ms.markTerminal(id, StatusFailed)
}

func (ms *MemoryStorage) markTerminal(id uuid.UUID, status Status) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	msg, exists := ms.messages[id]
	if !exists {
		return ErrMessageNotFound
	}
	if msg.Status == status {
		// Idempotent: the terminal status is already recorded.
		return nil
	}

	ms.transitionLocked(msg, status)
	return nil
}

// CachedContact returns the canonical contact stored for an address, if any.
func (ms *MemoryStorage) CachedContact(address string) (contact.Contact, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	c, ok := ms.contacts[strings.ToLower(strings.TrimSpace(address))]
	return c, ok
}

// transitionLocked moves a message between status indexes. Caller holds the
// write lock.
func (ms *MemoryStorage) transitionLocked(msg *Message, status Status) {
	ms.byStatus[msg.Status] = slices.DeleteFunc(ms.byStatus[msg.Status], func(other uuid.UUID) bool {
		return other == msg.ID
	})
	msg.Status = status
	msg.LastModifiedAt = time.Now()
	ms.byStatus[status] = append(ms.byStatus[status], msg.ID)
}

// internContacts resolves each contact against the cache, reusing existing
// rows and refreshing a changed display name. Caller holds the write lock.
func (ms *MemoryStorage) internContacts(contacts []contact.Contact) []contact.Contact {
	if len(contacts) == 0 {
		return nil
	}
	interned := make([]contact.Contact, 0, len(contacts))
	for _, c := range contacts {
		key := strings.ToLower(strings.TrimSpace(c.Address))
		if key == "" {
			continue
		}
		cached, ok := ms.contacts[key]
		if !ok {
			cached = contact.Contact{Address: strings.TrimSpace(c.Address), DisplayName: c.DisplayName}
		} else if c.DisplayName != "" && cached.DisplayName != c.DisplayName {
			cached.DisplayName = c.DisplayName
		}
		ms.contacts[key] = cached
		interned = append(interned, cached)
	}
	return interned
}

// copyMessage clones a message so callers cannot mutate stored state.
func copyMessage(msg *Message) *Message {
	clone := *msg
	clone.From = slices.Clone(msg.From)
	clone.To = slices.Clone(msg.To)
	clone.CC = slices.Clone(msg.CC)
	clone.BCC = slices.Clone(msg.BCC)
	return &clone
}
