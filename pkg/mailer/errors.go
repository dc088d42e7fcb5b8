package mailer

import "errors"

var (
	ErrFailedToSend     = errors.New("mailer: failed to send email")
	ErrInvalidConfig    = errors.New("mailer: invalid config")
	ErrMissingRecipient = errors.New("mailer: message has no recipient")
	ErrMissingSender    = errors.New("mailer: message has no sender")
	ErrInvalidSender    = errors.New("mailer: sender address is not a valid email address")
	ErrMissingSubject   = errors.New("mailer: message has no subject")
)
