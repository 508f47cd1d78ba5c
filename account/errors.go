package account

import "errors"

var (
	// ErrInvalidAddress indicates the address string could not be decoded.
	ErrInvalidAddress = errors.New("account: invalid address")

	// ErrInvalidLength indicates a raw address is not 20 bytes.
	ErrInvalidLength = errors.New("account: address must be 20 bytes")
)
