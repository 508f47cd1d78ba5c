package conversion

import "errors"

var (
	// ErrInvalidAmount indicates a zero or missing conversion amount.
	ErrInvalidAmount = errors.New("conversion: amount must be greater than zero")

	// ErrInsufficientAvailableBalance indicates the amount exceeds the
	// requester's balance minus what is already locked.
	ErrInsufficientAvailableBalance = errors.New("conversion: insufficient available balance")

	// ErrNotFound indicates an id that was never issued.
	ErrNotFound = errors.New("conversion: request not found")

	// ErrInvalidTransition indicates the request's status does not allow
	// the operation.
	ErrInvalidTransition = errors.New("conversion: invalid status transition")

	// ErrLockNotExpired indicates completion before the lock period ended.
	ErrLockNotExpired = errors.New("conversion: lock period not expired")

	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("conversion: invalid status")

	// ErrInvalidSnapshot indicates restored data is inconsistent.
	ErrInvalidSnapshot = errors.New("conversion: invalid snapshot")

	// ErrNilParam indicates a required dependency is nil.
	ErrNilParam = errors.New("conversion: required parameter is nil")
)
