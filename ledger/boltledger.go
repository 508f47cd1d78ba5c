package ledger

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libyield-go/account"
)

var (
	bucketBalances = []byte("ledger_balances")
	bucketMinters  = []byte("ledger_minters")
	bucketMeta     = []byte("ledger_meta")

	keyOwner  = []byte("owner")
	keySupply = []byte("supply")
	keyPaused = []byte("paused")
)

// BoltLedger persists balances in a bbolt database. The database handle
// is shared with other stores; BoltLedger never closes it.
type BoltLedger struct {
	db  *bbolt.DB
	own account.Address
}

// Compile-time interface check.
var _ Transactor = (*BoltLedger)(nil)

// NewBoltLedger creates the ledger buckets if needed and binds the ledger
// to owner. A database initialised for a different owner is rejected.
func NewBoltLedger(db *bbolt.DB, owner account.Address) (*BoltLedger, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketBalances, bucketMinters, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("ledger: create bucket %q: %w", name, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		stored := meta.Get(keyOwner)
		if stored == nil {
			return meta.Put(keyOwner, owner[:])
		}
		if !bytes.Equal(stored, owner[:]) {
			return fmt.Errorf("%w: %x", ErrOwnerMismatch, stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BoltLedger{db: db, own: owner}, nil
}

// Owner returns the ledger administrator.
func (l *BoltLedger) Owner() account.Address { return l.own }

// BalanceOf returns the balance of a.
func (l *BoltLedger) BalanceOf(a account.Address) (*uint256.Int, error) {
	var bal *uint256.Int
	err := l.db.View(func(tx *bbolt.Tx) error {
		var err error
		bal, err = l.view(tx).BalanceOf(a)
		return err
	})
	return bal, err
}

// IsPaused reports whether transfers are suspended.
func (l *BoltLedger) IsPaused() (bool, error) {
	var paused bool
	err := l.db.View(func(tx *bbolt.Tx) error {
		var err error
		paused, err = l.view(tx).IsPaused()
		return err
	})
	return paused, err
}

// Mint credits amount to `to`.
func (l *BoltLedger) Mint(minter, to account.Address, amount *uint256.Int) error {
	return l.Update(func(tx Ledger) error { return tx.Mint(minter, to, amount) })
}

// Transfer moves amount between accounts.
func (l *BoltLedger) Transfer(from, to account.Address, amount *uint256.Int) error {
	return l.Update(func(tx Ledger) error { return tx.Transfer(from, to, amount) })
}

// Update runs fn inside a single bbolt read-write transaction.
func (l *BoltLedger) Update(fn func(tx Ledger) error) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		return fn(l.view(tx))
	})
}

// Bind returns a view of the ledger inside tx, which must belong to the
// ledger's database. Mutations commit or roll back with tx.
func (l *BoltLedger) Bind(tx *bbolt.Tx) Ledger {
	return l.view(tx)
}

// TotalSupply returns the sum of all balances.
func (l *BoltLedger) TotalSupply() (*uint256.Int, error) {
	var supply *uint256.Int
	err := l.db.View(func(tx *bbolt.Tx) error {
		var err error
		supply, err = (&boltBackend{tx: tx, own: l.own}).supply()
		return err
	})
	return supply, err
}

// AddMinter authorises minter to mint. Owner only.
func (l *BoltLedger) AddMinter(caller, minter account.Address) error {
	if caller != l.own {
		return ErrUnauthorized
	}
	if minter.IsZero() {
		return fmt.Errorf("%w: minter", ErrZeroAddress)
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMinters).Put(minter[:], []byte{1})
	})
}

// Pause suspends transfers. Owner only.
func (l *BoltLedger) Pause(caller account.Address) error { return l.setPaused(caller, true) }

// Unpause resumes transfers. Owner only.
func (l *BoltLedger) Unpause(caller account.Address) error { return l.setPaused(caller, false) }

func (l *BoltLedger) setPaused(caller account.Address, paused bool) error {
	if caller != l.own {
		return ErrUnauthorized
	}
	v := []byte{0}
	if paused {
		v[0] = 1
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyPaused, v)
	})
}

func (l *BoltLedger) view(tx *bbolt.Tx) rules {
	return rules{&boltBackend{tx: tx, own: l.own}}
}

// boltBackend adapts a bbolt transaction to the ledger rules.
type boltBackend struct {
	tx  *bbolt.Tx
	own account.Address
}

func (b *boltBackend) owner() account.Address { return b.own }

func (b *boltBackend) balance(a account.Address) (*uint256.Int, error) {
	return decodeAmount(b.tx.Bucket(bucketBalances).Get(a[:]))
}

func (b *boltBackend) setBalance(a account.Address, v *uint256.Int) error {
	bucket := b.tx.Bucket(bucketBalances)
	if v.IsZero() {
		return bucket.Delete(a[:])
	}
	return bucket.Put(a[:], encodeAmount(v))
}

func (b *boltBackend) supply() (*uint256.Int, error) {
	return decodeAmount(b.tx.Bucket(bucketMeta).Get(keySupply))
}

func (b *boltBackend) setSupply(v *uint256.Int) error {
	return b.tx.Bucket(bucketMeta).Put(keySupply, encodeAmount(v))
}

func (b *boltBackend) isMinter(a account.Address) (bool, error) {
	return b.tx.Bucket(bucketMinters).Get(a[:]) != nil, nil
}

func (b *boltBackend) paused() (bool, error) {
	v := b.tx.Bucket(bucketMeta).Get(keyPaused)
	return len(v) == 1 && v[0] == 1, nil
}

// encodeAmount returns the 32-byte big-endian form of v.
func encodeAmount(v *uint256.Int) []byte {
	b := v.Bytes32()
	return b[:]
}

// decodeAmount parses a stored amount; a missing value is zero.
func decodeAmount(data []byte) (*uint256.Int, error) {
	if data == nil {
		return new(uint256.Int), nil
	}
	if len(data) != 32 {
		return nil, fmt.Errorf("%w: amount is %d bytes", ErrCorrupt, len(data))
	}
	return new(uint256.Int).SetBytes(data), nil
}
