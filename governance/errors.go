package governance

import "errors"

var (
	// ErrUnauthorized indicates the caller lacks the owner role.
	ErrUnauthorized = errors.New("governance: caller is not the owner")

	// ErrZeroOwner indicates the owner account is the null account.
	ErrZeroOwner = errors.New("governance: owner must not be the null account")
)
