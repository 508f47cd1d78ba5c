package registry

import "errors"

var (
	// ErrOutOfRange indicates a holder index past the end of the registry.
	ErrOutOfRange = errors.New("registry: index out of range")

	// ErrRegistryFull indicates a registration would exceed the capacity.
	ErrRegistryFull = errors.New("registry: holder capacity exceeded")

	// ErrDuplicateHolder indicates restored data lists a holder twice.
	ErrDuplicateHolder = errors.New("registry: duplicate holder")
)
