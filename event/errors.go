package event

import "errors"

var (
	// ErrInvalidEventData indicates an encoded event is malformed.
	ErrInvalidEventData = errors.New("event: invalid event data")

	// ErrUnknownKind indicates an event kind with no decoder.
	ErrUnknownKind = errors.New("event: unknown event kind")

	// ErrInvalidRecord indicates an encoded journal record is malformed.
	ErrInvalidRecord = errors.New("event: invalid journal record")

	// ErrChainBroken indicates a journal record does not link to its predecessor.
	ErrChainBroken = errors.New("event: journal hash chain broken")
)
