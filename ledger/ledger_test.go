package ledger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libyield-go/account"
)

func makeAddr(seed byte) account.Address {
	var a account.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

var (
	owner  = makeAddr(0x01)
	minter = makeAddr(0x02)
	alice  = makeAddr(0xAA)
	bob    = makeAddr(0xBB)
)

// adminLedger is the owner-facing surface both implementations share.
type adminLedger interface {
	Transactor
	AddMinter(caller, minter account.Address) error
	Pause(caller account.Address) error
	Unpause(caller account.Address) error
}

func tempDB(t *testing.T) *bbolt.DB {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "ledger.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func implementations(t *testing.T) map[string]func() adminLedger {
	return map[string]func() adminLedger{
		"mem": func() adminLedger { return NewMemLedger(owner) },
		"bolt": func() adminLedger {
			l, err := NewBoltLedger(tempDB(t), owner)
			require.NoError(t, err)
			return l
		},
	}
}

func balance(t *testing.T, l BalanceReader, a account.Address) uint64 {
	t.Helper()
	v, err := l.BalanceOf(a)
	require.NoError(t, err)
	return v.Uint64()
}

func TestLedger_MintAndBalance(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			l := newLedger()
			assert.Equal(t, uint64(0), balance(t, l, alice))

			require.NoError(t, l.Mint(owner, alice, uint256.NewInt(1000)))
			require.NoError(t, l.Mint(owner, alice, uint256.NewInt(22)))
			assert.Equal(t, uint64(1022), balance(t, l, alice))
		})
	}
}

func TestLedger_MintAuthorization(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			l := newLedger()

			err := l.Mint(minter, alice, uint256.NewInt(1))
			assert.ErrorIs(t, err, ErrUnauthorizedMinter)

			assert.ErrorIs(t, l.AddMinter(alice, minter), ErrUnauthorized)
			require.NoError(t, l.AddMinter(owner, minter))
			require.NoError(t, l.Mint(minter, alice, uint256.NewInt(5)))
			assert.Equal(t, uint64(5), balance(t, l, alice))
		})
	}
}

func TestLedger_MintToZeroAddress(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			l := newLedger()
			err := l.Mint(owner, account.Zero, uint256.NewInt(1))
			assert.ErrorIs(t, err, ErrZeroAddress)
		})
	}
}

func TestLedger_MintNilAmount(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, newLedger().Mint(owner, alice, nil), ErrNilAmount)
		})
	}
}

func TestLedger_MintSupplyOverflow(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			l := newLedger()
			max := new(uint256.Int).SetAllOne()
			require.NoError(t, l.Mint(owner, alice, max))
			err := l.Mint(owner, bob, uint256.NewInt(1))
			assert.ErrorIs(t, err, ErrSupplyOverflow)
			assert.Equal(t, uint64(0), balance(t, l, bob))
		})
	}
}

func TestLedger_Transfer(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			l := newLedger()
			require.NoError(t, l.Mint(owner, alice, uint256.NewInt(1000)))

			require.NoError(t, l.Transfer(alice, bob, uint256.NewInt(100)))
			assert.Equal(t, uint64(900), balance(t, l, alice))
			assert.Equal(t, uint64(100), balance(t, l, bob))

			err := l.Transfer(bob, alice, uint256.NewInt(101))
			assert.ErrorIs(t, err, ErrInsufficientBalance)
			assert.Equal(t, uint64(100), balance(t, l, bob))
		})
	}
}

func TestLedger_TransferWhilePaused(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			l := newLedger()
			require.NoError(t, l.Mint(owner, alice, uint256.NewInt(1000)))

			assert.ErrorIs(t, l.Pause(alice), ErrUnauthorized)
			require.NoError(t, l.Pause(owner))
			paused, err := l.IsPaused()
			require.NoError(t, err)
			assert.True(t, paused)

			assert.ErrorIs(t, l.Transfer(alice, bob, uint256.NewInt(1)), ErrPaused)

			require.NoError(t, l.Unpause(owner))
			require.NoError(t, l.Transfer(alice, bob, uint256.NewInt(1000)))
			assert.Equal(t, uint64(1000), balance(t, l, bob))
			assert.Equal(t, uint64(0), balance(t, l, alice))
		})
	}
}

func TestLedger_UpdateRollsBack(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			l := newLedger()
			require.NoError(t, l.Mint(owner, alice, uint256.NewInt(10)))

			boom := errors.New("boom")
			err := l.Update(func(tx Ledger) error {
				if err := tx.Mint(owner, alice, uint256.NewInt(5)); err != nil {
					return err
				}
				if err := tx.Mint(owner, bob, uint256.NewInt(7)); err != nil {
					return err
				}
				// Reads inside the transaction observe its own writes.
				v, err := tx.BalanceOf(alice)
				require.NoError(t, err)
				assert.Equal(t, uint64(15), v.Uint64())
				return boom
			})
			assert.ErrorIs(t, err, boom)

			assert.Equal(t, uint64(10), balance(t, l, alice))
			assert.Equal(t, uint64(0), balance(t, l, bob))
		})
	}
}

func TestLedger_UpdateCommits(t *testing.T) {
	for name, newLedger := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			l := newLedger()
			err := l.Update(func(tx Ledger) error {
				if err := tx.Mint(owner, alice, uint256.NewInt(3)); err != nil {
					return err
				}
				return tx.Mint(owner, bob, uint256.NewInt(4))
			})
			require.NoError(t, err)
			assert.Equal(t, uint64(3), balance(t, l, alice))
			assert.Equal(t, uint64(4), balance(t, l, bob))
		})
	}
}

func TestMemLedger_TotalSupply(t *testing.T) {
	l := NewMemLedger(owner)
	require.NoError(t, l.Mint(owner, alice, uint256.NewInt(1000)))
	require.NoError(t, l.Mint(owner, bob, uint256.NewInt(500)))
	require.NoError(t, l.Transfer(alice, bob, uint256.NewInt(250)))
	assert.Equal(t, uint64(1500), l.TotalSupply().Uint64())
}

func TestBoltLedger_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	l, err := NewBoltLedger(db, owner)
	require.NoError(t, err)
	require.NoError(t, l.AddMinter(owner, minter))
	require.NoError(t, l.Mint(minter, alice, uint256.NewInt(42)))
	require.NoError(t, db.Close())

	db, err = bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = NewBoltLedger(db, alice)
	assert.ErrorIs(t, err, ErrOwnerMismatch)

	l, err = NewBoltLedger(db, owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance(t, l, alice))
	supply, err := l.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), supply.Uint64())
	require.NoError(t, l.Mint(minter, bob, uint256.NewInt(1)))
}
