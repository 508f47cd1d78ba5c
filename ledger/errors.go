package ledger

import "errors"

var (
	// ErrUnauthorized indicates an owner-only ledger call from another account.
	ErrUnauthorized = errors.New("ledger: caller is not the ledger owner")

	// ErrUnauthorizedMinter indicates the caller may not mint.
	ErrUnauthorizedMinter = errors.New("ledger: caller is not an authorized minter")

	// ErrZeroAddress indicates the null account was used as a recipient.
	ErrZeroAddress = errors.New("ledger: null account")

	// ErrPaused indicates transfers are suspended.
	ErrPaused = errors.New("ledger: transfers are paused")

	// ErrInsufficientBalance indicates the sender cannot cover the amount.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrNilAmount indicates a required amount is nil.
	ErrNilAmount = errors.New("ledger: amount is nil")

	// ErrSupplyOverflow indicates a mint would overflow 256 bits.
	ErrSupplyOverflow = errors.New("ledger: total supply overflow")

	// ErrOwnerMismatch indicates a persisted ledger belongs to another owner.
	ErrOwnerMismatch = errors.New("ledger: persisted owner differs")

	// ErrCorrupt indicates a persisted value could not be decoded.
	ErrCorrupt = errors.New("ledger: corrupt record")
)
