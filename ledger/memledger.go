package ledger

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/bitfsorg/libyield-go/account"
)

// memState holds ledger data without any locking; MemLedger guards it.
type memState struct {
	own      account.Address
	balances map[account.Address]*uint256.Int
	minters  map[account.Address]bool
	total    *uint256.Int
	stopped  bool
}

func (s *memState) owner() account.Address { return s.own }

func (s *memState) balance(a account.Address) (*uint256.Int, error) {
	if v, ok := s.balances[a]; ok {
		return v.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (s *memState) setBalance(a account.Address, v *uint256.Int) error {
	if v.IsZero() {
		delete(s.balances, a)
		return nil
	}
	s.balances[a] = v.Clone()
	return nil
}

func (s *memState) supply() (*uint256.Int, error) { return s.total.Clone(), nil }

func (s *memState) setSupply(v *uint256.Int) error {
	s.total = v.Clone()
	return nil
}

func (s *memState) isMinter(a account.Address) (bool, error) { return s.minters[a], nil }

func (s *memState) paused() (bool, error) { return s.stopped, nil }

// clone returns a copy that can be mutated without affecting s. Stored
// values are never mutated in place, so sharing the pointers is safe.
func (s *memState) clone() *memState {
	c := &memState{
		own:      s.own,
		balances: make(map[account.Address]*uint256.Int, len(s.balances)),
		minters:  s.minters,
		total:    s.total,
		stopped:  s.stopped,
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	return c
}

// MemLedger is an in-memory Transactor.
type MemLedger struct {
	mu    sync.RWMutex
	state *memState
}

// Compile-time interface check.
var _ Transactor = (*MemLedger)(nil)

// NewMemLedger creates an empty ledger administered by owner.
func NewMemLedger(owner account.Address) *MemLedger {
	return &MemLedger{
		state: &memState{
			own:      owner,
			balances: make(map[account.Address]*uint256.Int),
			minters:  make(map[account.Address]bool),
			total:    new(uint256.Int),
		},
	}
}

// Owner returns the ledger administrator.
func (l *MemLedger) Owner() account.Address { return l.state.own }

// BalanceOf returns the balance of a.
func (l *MemLedger) BalanceOf(a account.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return rules{l.state}.BalanceOf(a)
}

// IsPaused reports whether transfers are suspended.
func (l *MemLedger) IsPaused() (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.stopped, nil
}

// Mint credits amount to `to`.
func (l *MemLedger) Mint(minter, to account.Address, amount *uint256.Int) error {
	return l.Update(func(tx Ledger) error { return tx.Mint(minter, to, amount) })
}

// Transfer moves amount between accounts.
func (l *MemLedger) Transfer(from, to account.Address, amount *uint256.Int) error {
	return l.Update(func(tx Ledger) error { return tx.Transfer(from, to, amount) })
}

// Update runs fn against a private copy of the ledger and publishes the
// copy only if fn succeeds.
func (l *MemLedger) Update(fn func(tx Ledger) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	staged := l.state.clone()
	if err := fn(rules{staged}); err != nil {
		return err
	}
	l.state = staged
	return nil
}

// TotalSupply returns the sum of all balances.
func (l *MemLedger) TotalSupply() *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.total.Clone()
}

// AddMinter authorises minter to mint. Owner only.
func (l *MemLedger) AddMinter(caller, minter account.Address) error {
	if minter.IsZero() {
		return fmt.Errorf("%w: minter", ErrZeroAddress)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.state.own {
		return ErrUnauthorized
	}

	minters := make(map[account.Address]bool, len(l.state.minters)+1)
	for k, v := range l.state.minters {
		minters[k] = v
	}
	minters[minter] = true
	l.state.minters = minters
	return nil
}

// Pause suspends transfers. Owner only.
func (l *MemLedger) Pause(caller account.Address) error { return l.setPaused(caller, true) }

// Unpause resumes transfers. Owner only.
func (l *MemLedger) Unpause(caller account.Address) error { return l.setPaused(caller, false) }

func (l *MemLedger) setPaused(caller account.Address, paused bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.state.own {
		return ErrUnauthorized
	}
	l.state.stopped = paused
	return nil
}
