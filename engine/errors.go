package engine

import "errors"

var (
	// ErrAlreadyInitialized indicates Init on a database that holds state.
	ErrAlreadyInitialized = errors.New("engine: already initialized")

	// ErrOwnerMismatch indicates Open with an owner different from the stored one.
	ErrOwnerMismatch = errors.New("engine: owner does not match stored state")

	// ErrPersist indicates the state change could not be saved. In-memory
	// state has been reloaded from the database.
	ErrPersist = errors.New("engine: persist state")

	// ErrClosed indicates use after Close.
	ErrClosed = errors.New("engine: closed")
)
