// Package mailer provides a provider-agnostic transport boundary for sending
// fully rendered email messages.
//
// The package is built around the Transport interface so providers can be
// swapped without changing queue or dispatcher code. Currently supported:
//   - PostmarkTransport for production delivery via the Postmark API
//   - DevTransport for local development (saves emails to disk)
//
// All implementations validate the outgoing message before sending and report
// failures through the ErrFailedToSend sentinel, which the dispatcher treats
// as a per-message failure rather than a run failure.
//
// # Usage
//
//	import "github.com/dmitrymomot/emailqueue/pkg/mailer"
//
//	cfg := mailer.Config{
//	    PostmarkServerToken:  "server-token",
//	    PostmarkAccountToken: "account-token",
//	}
//
//	transport, err := mailer.NewPostmarkTransport(cfg)
//	if err != nil {
//	    // handle configuration error
//	}
//
//	err = transport.Send(ctx, mailer.Email{
//	    From:    contact.Contact{Address: "noreply@example.com"},
//	    To:      []contact.Contact{{Address: "user@example.com"}},
//	    Subject: "Welcome",
//	    Body:    "<h1>Hello</h1>",
//	})
package mailer
