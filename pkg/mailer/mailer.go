package mailer

import (
	"context"
	"regexp"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
)

// Transport sends a fully rendered email message. Implementations are
// expected to enforce their own timeouts; the dispatcher treats any returned
// error as a per-message send failure.
type Transport interface {
	Send(ctx context.Context, email Email) error
}

// Email is the wire-level message handed to a Transport. Recipient lists are
// already filtered for the current environment by the time a Transport sees
// them.
type Email struct {
	From    contact.Contact
	To      []contact.Contact
	CC      []contact.Contact
	BCC     []contact.Contact
	Subject string
	Body    string
	Tag     string
}

// emailRegex is intentionally permissive; strict RFC 5322 validation rejects
// real-world addresses and the upstream provider validates anyway.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the minimum requirements for a sendable message.
func (e Email) Validate() error {
	if e.From.Address == "" {
		return ErrMissingSender
	}
	if !emailRegex.MatchString(e.From.Address) {
		return ErrInvalidSender
	}
	if len(e.To) == 0 {
		return ErrMissingRecipient
	}
	if e.Subject == "" {
		return ErrMissingSubject
	}
	return nil
}
