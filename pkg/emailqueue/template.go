package emailqueue

import "github.com/dmitrymomot/emailqueue/pkg/contact"

// Template is the message-producing source a Builder pulls from. The
// rendered subject and body are taken as-is; rendering itself is outside the
// queue's scope. Recipient accessors may return nil for empty lists.
//
// The template's class, derived from its Go type name, is stored on the
// message and combined with an optional unique key for once-only queuing.
type Template interface {
	From() contact.Recipient
	To() contact.Recipient
	CC() contact.Recipient
	BCC() contact.Recipient
	Subject() string
	Body() string
}

// UniqueKeyer is an optional Template capability declaring a de-duplication
// key. An empty string means no key.
type UniqueKeyer interface {
	UniqueKey() string
}

// Fallbacker is an optional Template capability marking templates that may
// be queued without a final "to" recipient. The fallback address is resolved
// at the transport boundary from dispatcher configuration, not stored with
// the message.
type Fallbacker interface {
	AllowMissingRecipient() bool
}
