package registry

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bitfsorg/libyield-go/account"
	"github.com/bitfsorg/libyield-go/ledger"
	"github.com/bitfsorg/libyield-go/ledger/ledgermock"
)

func makeAddr(seed byte) account.Address {
	var a account.Address
	for i := range a {
		a[i] = seed
	}
	return a
}

var (
	owner = makeAddr(0x01)
	alice = makeAddr(0xAA)
	bob   = makeAddr(0xBB)
	carol = makeAddr(0xCC)
)

func fundedLedger(t *testing.T, funded ...account.Address) *ledger.MemLedger {
	t.Helper()
	l := ledger.NewMemLedger(owner)
	for _, a := range funded {
		require.NoError(t, l.Mint(owner, a, uint256.NewInt(1000)))
	}
	return l
}

func TestRegister_PositiveBalanceOnly(t *testing.T) {
	l := fundedLedger(t, alice, bob)
	r := New(0)

	added, err := r.Register(l, alice, carol, bob)
	require.NoError(t, err)
	assert.Equal(t, []account.Address{alice, bob}, added)
	assert.Equal(t, 2, r.Count())
	assert.True(t, r.IsRegistered(alice))
	assert.True(t, r.IsRegistered(bob))
	assert.False(t, r.IsRegistered(carol))
}

func TestRegister_Idempotent(t *testing.T) {
	l := fundedLedger(t, alice, bob)
	r := New(0)

	_, err := r.Register(l, alice)
	require.NoError(t, err)

	added, err := r.Register(l, alice, alice)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, 1, r.Count())

	added, err = r.Register(l, bob, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, []account.Address{bob}, added)
	assert.Equal(t, []account.Address{alice, bob}, r.Holders())
}

func TestRegister_ZeroBalanceHolderStays(t *testing.T) {
	l := fundedLedger(t, alice)
	r := New(0)
	_, err := r.Register(l, alice)
	require.NoError(t, err)

	require.NoError(t, l.Transfer(alice, bob, uint256.NewInt(1000)))
	assert.True(t, r.IsRegistered(alice))
	assert.Equal(t, 1, r.Count())
}

func TestRegister_Capacity(t *testing.T) {
	l := fundedLedger(t, alice, bob, carol)
	r := New(2)

	_, err := r.Register(l, alice)
	require.NoError(t, err)

	_, err = r.Register(l, bob, carol)
	assert.ErrorIs(t, err, ErrRegistryFull)
	assert.Equal(t, 1, r.Count())
	assert.False(t, r.IsRegistered(bob))

	_, err = r.Register(l, bob)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())

	// Already registered accounts do not count against capacity.
	_, err = r.Register(l, alice, bob)
	assert.NoError(t, err)
}

func TestRegister_LedgerErrorAddsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	bal := ledgermock.NewMockBalanceReader(ctrl)
	boom := errors.New("ledger unavailable")

	bal.EXPECT().BalanceOf(alice).Return(uint256.NewInt(10), nil)
	bal.EXPECT().BalanceOf(bob).Return(nil, boom)

	r := New(0)
	_, err := r.Register(bal, alice, bob)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, r.Count())
}

func TestGet_Bounds(t *testing.T) {
	l := fundedLedger(t, alice, bob)
	r := New(0)
	_, err := r.Register(l, alice, bob)
	require.NoError(t, err)

	got, err := r.Get(0)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
	got, err = r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	_, err = r.Get(2)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = r.Get(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestRestore(t *testing.T) {
	r := New(0)
	require.NoError(t, r.Restore([]account.Address{bob, alice}))
	assert.Equal(t, []account.Address{bob, alice}, r.Holders())
	assert.True(t, r.IsRegistered(alice))

	err := r.Restore([]account.Address{alice, alice})
	assert.ErrorIs(t, err, ErrDuplicateHolder)

	small := New(1)
	err = small.Restore([]account.Address{alice, bob})
	assert.ErrorIs(t, err, ErrRegistryFull)
}
