package contact

import "fmt"

// Contact is an immutable (address, display name) pair. The display name is
// optional and may be empty.
type Contact struct {
	Address     string `json:"address"`
	DisplayName string `json:"display_name,omitempty"`
}

// RFC5322 renders the contact as an RFC 5322 mailbox: "Name <address>" when a
// display name is present, the bare address otherwise.
func (c Contact) RFC5322() string {
	if c.DisplayName == "" {
		return c.Address
	}
	return fmt.Sprintf("%s <%s>", c.DisplayName, c.Address)
}

// Addresses extracts the plain address list from a contact sequence,
// preserving order.
func Addresses(contacts []Contact) []string {
	if len(contacts) == 0 {
		return nil
	}
	addrs := make([]string, 0, len(contacts))
	for _, c := range contacts {
		addrs = append(addrs, c.Address)
	}
	return addrs
}
