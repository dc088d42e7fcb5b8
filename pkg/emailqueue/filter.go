package emailqueue

import (
	"strings"

	"github.com/dmitrymomot/emailqueue/pkg/contact"
	"github.com/dmitrymomot/emailqueue/pkg/environment"
)

// RecipientFilter rewrites recipient lists in non-production environments so
// real addresses never receive mail from test systems. It runs immediately
// before the transport call; the stored message always keeps the original
// recipients for audit purposes.
type RecipientFilter struct {
	env       environment.Environment
	whitelist map[string]struct{}
	override  string
}

// NewRecipientFilter builds a filter from the queue config. The whitelist is
// newline-delimited and matched case-insensitively.
func NewRecipientFilter(cfg Config) *RecipientFilter {
	whitelist := make(map[string]struct{})
	for _, line := range strings.Split(cfg.TestRecipientWhitelist, "\n") {
		addr := strings.ToLower(strings.TrimSpace(line))
		if addr != "" {
			whitelist[addr] = struct{}{}
		}
	}
	return &RecipientFilter{
		env:       environment.Environment(cfg.Environment),
		whitelist: whitelist,
		override:  strings.TrimSpace(cfg.OverrideAddress),
	}
}

// Active reports whether filtering applies in the configured environment.
func (f *RecipientFilter) Active() bool {
	return f.env != environment.Production && string(f.env) != "prod"
}

// Apply returns the recipient lists to hand to the transport. In production
// all lists pass through unchanged. Otherwise each list is reduced to its
// whitelisted subset; an emptied "to" list is replaced with the override
// address (ErrNoOverrideAddress when none is configured), while emptied cc
// and bcc lists are simply omitted.
func (f *RecipientFilter) Apply(to, cc, bcc []contact.Contact) (filteredTo, filteredCC, filteredBCC []contact.Contact, err error) {
	if !f.Active() {
		return to, cc, bcc, nil
	}

	filteredTo = f.approved(to)
	if len(filteredTo) == 0 {
		if f.override == "" {
			return nil, nil, nil, ErrNoOverrideAddress
		}
		filteredTo = []contact.Contact{{Address: f.override}}
	}

	return filteredTo, f.approved(cc), f.approved(bcc), nil
}

func (f *RecipientFilter) approved(contacts []contact.Contact) []contact.Contact {
	var approved []contact.Contact
	for _, c := range contacts {
		addr := strings.ToLower(strings.TrimSpace(c.Address))
		if addr == "" {
			continue
		}
		if _, ok := f.whitelist[addr]; ok {
			approved = append(approved, c)
		}
	}
	return approved
}
