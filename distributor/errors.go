package distributor

import "errors"

var (
	// ErrNotDue indicates distribution is paused or the interval has not elapsed.
	ErrNotDue = errors.New("distributor: distribution not due")

	// ErrRateTooHigh indicates a weekly rate above MaxWeeklyRateBps.
	ErrRateTooHigh = errors.New("distributor: weekly rate too high (max 1000 bps)")

	// ErrSweepFailed indicates a ledger failure aborted the sweep.
	ErrSweepFailed = errors.New("distributor: sweep aborted")

	// ErrYieldOverflow indicates a yield that does not fit in 256 bits.
	ErrYieldOverflow = errors.New("distributor: yield overflows 256 bits")

	// ErrNilParam indicates a required dependency is nil.
	ErrNilParam = errors.New("distributor: required parameter is nil")
)
