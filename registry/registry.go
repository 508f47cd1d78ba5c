// Package registry tracks the accounts eligible for yield.
//
// Holders are kept in registration order and are never removed: a holder
// whose balance drops to zero stays registered and simply earns nothing.
// The distributor sweeps the whole list on every distribution, so the
// registry enforces an explicit capacity instead of letting the sweep
// grow without bound.
package registry

import (
	"fmt"
	"sync"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/ledger"
)

// DefaultCapacity bounds the number of holders a single sweep visits.
const DefaultCapacity = 10000

// Registry is an append-only, insertion-ordered set of holders.
type Registry struct {
	mu       sync.RWMutex
	holders  []account.Address
	index    map[account.Address]int
	capacity int
}

// New creates an empty registry. A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		index:    make(map[account.Address]int),
		capacity: capacity,
	}
}

// Capacity returns the maximum number of holders.
func (r *Registry) Capacity() int { return r.capacity }

// Register appends every account that currently holds a positive balance
// and is not registered yet. Zero-balance and already registered accounts
// are skipped, so overlapping batches are safe to retry. The batch is
// applied entirely or not at all; it returns the accounts actually added.
func (r *Registry) Register(bal ledger.BalanceReader, accounts ...account.Address) ([]account.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var added []account.Address
	seen := make(map[account.Address]bool, len(accounts))
	for _, a := range accounts {
		if _, ok := r.index[a]; ok || seen[a] {
			continue
		}
		b, err := bal.BalanceOf(a)
		if err != nil {
			return nil, fmt.Errorf("registry: balance of %s: %w", a, err)
		}
		if b.IsZero() {
			continue
		}
		seen[a] = true
		added = append(added, a)
	}

	if len(r.holders)+len(added) > r.capacity {
		return nil, fmt.Errorf("%w: %d registered, %d new, capacity %d",
			ErrRegistryFull, len(r.holders), len(added), r.capacity)
	}
	for _, a := range added {
		r.index[a] = len(r.holders)
		r.holders = append(r.holders, a)
	}
	return added, nil
}

// IsRegistered reports whether a is a holder.
func (r *Registry) IsRegistered(a account.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[a]
	return ok
}

// Count returns the number of registered holders.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.holders)
}

// Get returns the holder at index in registration order.
func (r *Registry) Get(index int) (account.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.holders) {
		return account.Zero, fmt.Errorf("%w: %d (count %d)", ErrOutOfRange, index, len(r.holders))
	}
	return r.holders[index], nil
}

// Holders returns a copy of the holder list in registration order.
func (r *Registry) Holders() []account.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]account.Address, len(r.holders))
	copy(out, r.holders)
	return out
}

// Restore replaces the registry contents with a previously saved list.
func (r *Registry) Restore(holders []account.Address) error {
	if len(holders) > r.capacity {
		return fmt.Errorf("%w: %d holders, capacity %d", ErrRegistryFull, len(holders), r.capacity)
	}
	index := make(map[account.Address]int, len(holders))
	for i, a := range holders {
		if _, ok := index[a]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateHolder, a)
		}
		index[a] = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.holders = append([]account.Address(nil), holders...)
	r.index = index
	return nil
}
