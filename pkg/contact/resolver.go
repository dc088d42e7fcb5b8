package contact

import (
	"fmt"
	"sort"
	"strings"
)

type (
	// Recipient is the tagged union over the supported recipient input shapes.
	// The concrete variants are Address, AddressList, AddressNameMap, and any
	// value implementing AddressProvider.
	Recipient interface {
		recipientInput()
	}

	// Address is a single plain email address.
	Address string

	// AddressList is an ordered sequence of plain email addresses.
	AddressList []string

	// AddressNameMap maps email addresses to display names. Resolution order
	// is deterministic: entries are sorted by address.
	AddressNameMap map[string]string
)

func (Address) recipientInput()        {}
func (AddressList) recipientInput()    {}
func (AddressNameMap) recipientInput() {}

// AddressProvider is implemented by domain objects that expose their own
// email addresses, e.g. a user or organization record. Each map entry is an
// address with an optional display name (empty string allowed).
type AddressProvider interface {
	EmailAddresses() map[string]string
}

// Provider wraps an AddressProvider so it can be passed as a Recipient.
func Provider(p AddressProvider) Recipient {
	return providerRecipient{provider: p}
}

type providerRecipient struct {
	provider AddressProvider
}

func (providerRecipient) recipientInput() {}

// Resolve normalizes a recipient input into an ordered Contact sequence.
// Whitespace is trimmed from every address; blank addresses are skipped.
// Map-shaped inputs are ordered by address so repeated resolutions of the
// same input produce identical sequences.
//
// Resolve does not deduplicate across calls; address-level deduplication is a
// storage concern (find-or-create by address).
func Resolve(input Recipient) ([]Contact, error) {
	switch in := input.(type) {
	case Address:
		addr := strings.TrimSpace(string(in))
		if addr == "" {
			return nil, ErrEmptyAddress
		}
		return []Contact{{Address: addr}}, nil

	case AddressList:
		contacts := make([]Contact, 0, len(in))
		for _, raw := range in {
			addr := strings.TrimSpace(raw)
			if addr == "" {
				continue
			}
			contacts = append(contacts, Contact{Address: addr})
		}
		return contacts, nil

	case AddressNameMap:
		return resolveMap(in), nil

	case providerRecipient:
		if in.provider == nil {
			return nil, fmt.Errorf("%w: nil address provider", ErrInvalidInputKind)
		}
		return resolveMap(in.provider.EmailAddresses()), nil

	case nil:
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInputKind)
	}

	return nil, fmt.Errorf("%w: %T", ErrInvalidInputKind, input)
}

// ResolveAny behaves like Resolve but additionally accepts untyped values
// (string, []string, map[string]string) coming from dynamic sources such as
// decoded JSON payloads.
func ResolveAny(input any) ([]Contact, error) {
	switch in := input.(type) {
	case Recipient:
		return Resolve(in)
	case AddressProvider:
		return Resolve(Provider(in))
	case string:
		return Resolve(Address(in))
	case []string:
		return Resolve(AddressList(in))
	case map[string]string:
		return Resolve(AddressNameMap(in))
	case nil:
		return nil, fmt.Errorf("%w: nil input", ErrInvalidInputKind)
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidInputKind, input)
}

func resolveMap(m map[string]string) []Contact {
	contacts := make([]Contact, 0, len(m))
	for raw, name := range m {
		addr := strings.TrimSpace(raw)
		if addr == "" {
			continue
		}
		contacts = append(contacts, Contact{Address: addr, DisplayName: strings.TrimSpace(name)})
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Address < contacts[j].Address })
	return contacts
}
