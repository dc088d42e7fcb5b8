package emailqueue

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
)

// Status represents the lifecycle state of a queued message.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in-progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Valid checks if the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusInProgress, StatusSent, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further automatic
// transition.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Role identifies which header a contact belongs to on a message.
type Role string

const (
	RoleFrom Role = "from"
	RoleTo   Role = "to"
	RoleCC   Role = "cc"
	RoleBCC  Role = "bcc"
)

// Message is a queue entry: a fully rendered email plus its dispatch state.
// Recipient lists hold the original intended recipients for audit purposes;
// environment-based rewriting happens at send time only and is never written
// back.
type Message struct {
	ID              uuid.UUID         `json:"id"`
	From            []contact.Contact `json:"from"`
	To              []contact.Contact `json:"to"`
	CC              []contact.Contact `json:"cc,omitempty"`
	BCC             []contact.Contact `json:"bcc,omitempty"`
	Subject         string            `json:"subject"`
	Body            string            `json:"body"`
	Status          Status            `json:"status"`
	TemplateClass   string            `json:"template_class"`
	UniqueKey       string            `json:"unique_key,omitempty"`
	SendingSchedule time.Time         `json:"sending_schedule"`
	CreatedAt       time.Time         `json:"created_at"`
	LastModifiedAt  time.Time         `json:"last_modified_at"`
}

// Due reports whether the message is eligible for dispatch at the given
// time: still queued and past its sending schedule.
func (m *Message) Due(now time.Time) bool {
	return m.Status == StatusQueued && !m.SendingSchedule.After(now)
}
