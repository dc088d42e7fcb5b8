package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
)

type postmarkTransport struct {
	client *postmark.Client
}

// NewPostmarkTransport creates a Postmark-backed transport. Both tokens are
// required for runtime operation - this enforces explicit configuration
// rather than silent failures in production.
func NewPostmarkTransport(cfg Config) (Transport, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}

	return &postmarkTransport{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
	}, nil
}

// MustNewPostmarkTransport creates a Postmark transport that panics on
// invalid config. Fails fast during initialization rather than allowing a
// broken dispatcher to start.
func MustNewPostmarkTransport(cfg Config) Transport {
	transport, err := NewPostmarkTransport(cfg)
	if err != nil {
		panic(err)
	}
	return transport
}

// Send implements Transport using Postmark's transactional API. Open
// tracking is enabled; link tracking is limited to HTML to avoid mangling
// plain text bodies.
func (t *postmarkTransport) Send(ctx context.Context, email Email) error {
	if err := email.Validate(); err != nil {
		return err
	}

	resp, err := t.client.SendEmail(ctx, postmark.Email{
		From:       email.From.RFC5322(),
		To:         joinMailboxes(email.To),
		Cc:         joinMailboxes(email.CC),
		Bcc:        joinMailboxes(email.BCC),
		Subject:    email.Subject,
		Tag:        email.Tag,
		HTMLBody:   email.Body,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(ErrFailedToSend, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrFailedToSend,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

// joinMailboxes renders contacts as a comma-separated RFC 5322 list, the
// format Postmark expects for multi-recipient headers.
func joinMailboxes(contacts []contact.Contact) string {
	if len(contacts) == 0 {
		return ""
	}
	mailboxes := make([]string, 0, len(contacts))
	for _, c := range contacts {
		mailboxes = append(mailboxes, c.RFC5322())
	}
	return strings.Join(mailboxes, ", ")
}
