package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libyield-go/account"
)

// backend is the storage primitive set the shared ledger rules run on.
type backend interface {
	owner() account.Address
	balance(a account.Address) (*uint256.Int, error)
	setBalance(a account.Address, v *uint256.Int) error
	supply() (*uint256.Int, error)
	setSupply(v *uint256.Int) error
	isMinter(a account.Address) (bool, error)
	paused() (bool, error)
}

// rules implements Ledger on top of a backend.
type rules struct {
	b backend
}

var _ Ledger = rules{}

func (r rules) BalanceOf(a account.Address) (*uint256.Int, error) {
	return r.b.balance(a)
}

func (r rules) IsPaused() (bool, error) {
	return r.b.paused()
}

func (r rules) Mint(minter, to account.Address, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	if to.IsZero() {
		return fmt.Errorf("%w: mint recipient", ErrZeroAddress)
	}
	if minter != r.b.owner() {
		ok, err := r.b.isMinter(minter)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnauthorizedMinter, minter)
		}
	}

	supply, err := r.b.supply()
	if err != nil {
		return err
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	bal, err := r.b.balance(to)
	if err != nil {
		return err
	}
	// balance <= supply, so this cannot overflow once the supply check passed.
	newBal := new(uint256.Int).Add(bal, amount)

	if err := r.b.setBalance(to, newBal); err != nil {
		return err
	}
	return r.b.setSupply(newSupply)
}

func (r rules) Transfer(from, to account.Address, amount *uint256.Int) error {
	if amount == nil {
		return ErrNilAmount
	}
	paused, err := r.b.paused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	if to.IsZero() {
		return fmt.Errorf("%w: transfer recipient", ErrZeroAddress)
	}

	fromBal, err := r.b.balance(from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, fromBal.Dec(), amount.Dec())
	}
	if from == to {
		return nil
	}
	toBal, err := r.b.balance(to)
	if err != nil {
		return err
	}

	if err := r.b.setBalance(from, new(uint256.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return r.b.setBalance(to, new(uint256.Int).Add(toBal, amount))
}
