// Package contact normalizes arbitrary recipient inputs into a canonical,
// ordered list of email contacts.
//
// Callers rarely hold recipients in a single shape: sometimes it is a plain
// address string, sometimes a slice of addresses, sometimes a map of address
// to display name, and sometimes a domain object that knows its own email
// addresses. The package models these shapes as a small tagged union over the
// Recipient interface and funnels all of them through a single normalization
// boundary, Resolve, so type checks never leak into other components.
//
// # Usage
//
//	import "github.com/dmitrymomot/emailqueue/pkg/contact"
//
//	contacts, err := contact.Resolve(contact.AddressNameMap{
//	    "alice@example.com": "Alice",
//	    "bob@example.com":   "Bob",
//	})
//
// Domain objects participate by implementing AddressProvider:
//
//	type Member struct{ Email, Name string }
//
//	func (m Member) EmailAddresses() map[string]string {
//	    return map[string]string{m.Email: m.Name}
//	}
//
// # Error Handling
//
// Resolve returns ErrInvalidInputKind when the input matches none of the
// supported shapes. The error can be checked with errors.Is.
package contact
