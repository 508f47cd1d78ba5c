// Package ledger specifies the fungible balance ledger the yield engine
// builds on and provides two reference implementations: MemLedger for
// tests and embedding, BoltLedger for persistent single-node use.
//
// Balances are non-negative 256-bit integers and total supply always
// equals the sum of balances. Mint is restricted to the owner and the
// minters the owner authorised. Transfers fail while the ledger is paused.
package ledger

import (
	"github.com/holiman/uint256"

	"github.com/bitfsorg/libyield-go/account"
)

//go:generate mockgen -source=ledger.go -destination=ledgermock/ledger_mock.go -package=ledgermock

// BalanceReader is the read side of the ledger.
type BalanceReader interface {
	// BalanceOf returns the current balance of a. Unknown accounts hold zero.
	BalanceOf(a account.Address) (*uint256.Int, error)
}

// Ledger is the minimum surface the engine requires.
type Ledger interface {
	BalanceReader

	// Mint credits amount to `to`. Fails unless minter is authorised or
	// when `to` is the null account.
	Mint(minter, to account.Address, amount *uint256.Int) error

	// Transfer moves amount from `from` to `to`.
	Transfer(from, to account.Address, amount *uint256.Int) error

	// IsPaused reports whether transfers are suspended.
	IsPaused() (bool, error)
}

// Transactor is a Ledger that can apply a group of mutations atomically.
type Transactor interface {
	Ledger

	// Update runs fn against a transactional view. If fn returns an error
	// none of its mutations become visible.
	Update(fn func(tx Ledger) error) error
}
