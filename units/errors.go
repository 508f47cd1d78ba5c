package units

import "errors"

var (
	// ErrInvalidAmount indicates a string that is not a decimal amount.
	ErrInvalidAmount = errors.New("units: invalid amount")

	// ErrNegativeAmount indicates an amount below zero.
	ErrNegativeAmount = errors.New("units: amount must not be negative")

	// ErrTooPrecise indicates more fractional digits than the token has.
	ErrTooPrecise = errors.New("units: too many decimal places")

	// ErrAmountOverflow indicates an amount that does not fit 256 bits.
	ErrAmountOverflow = errors.New("units: amount overflows 256 bits")
)
