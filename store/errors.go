package store

import "errors"

var (
	// ErrNotInitialized indicates the database holds no engine state yet.
	ErrNotInitialized = errors.New("store: not initialized")

	// ErrInvalidStateData indicates a corrupt or truncated state record.
	ErrInvalidStateData = errors.New("store: invalid state data")

	// ErrInvalidRequestData indicates a corrupt conversion request record.
	ErrInvalidRequestData = errors.New("store: invalid request data")

	// ErrUnsupportedVersion indicates state written by a newer format.
	ErrUnsupportedVersion = errors.New("store: unsupported state version")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")
)
