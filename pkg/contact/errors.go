package contact

import "errors"

var (
	// ErrInvalidInputKind is returned when a recipient input matches none of
	// the supported shapes (address string, address list, address-name map,
	// or AddressProvider).
	ErrInvalidInputKind = errors.New("recipient input kind is not resolvable")

	// ErrEmptyAddress is returned when an input resolves to no usable address.
	ErrEmptyAddress = errors.New("recipient address is empty")
)
