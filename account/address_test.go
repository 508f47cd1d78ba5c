package account

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAddr(seed byte) Address {
	var a Address
	for i := range a {
		a[i] = seed
	}
	return a
}

func TestAddress_StringParseRoundTrip(t *testing.T) {
	for _, seed := range []byte{0x01, 0x7f, 0xaa, 0xff} {
		a := makeAddr(seed)
		s := a.String()
		assert.NotEmpty(t, s)

		parsed, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}
}

func TestAddress_EncodeTestnet(t *testing.T) {
	a := makeAddr(0x42)
	main, err := a.Encode(true)
	require.NoError(t, err)
	test, err := a.Encode(false)
	require.NoError(t, err)
	assert.NotEqual(t, main, test)

	parsed, err := Parse(test)
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestParse_Hex(t *testing.T) {
	a := makeAddr(0x10)
	parsed, err := Parse(hex.EncodeToString(a[:]))
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("definitely-not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestFromBytes_WrongLength(t *testing.T) {
	_, err := FromBytes([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestAddress_IsZero(t *testing.T) {
	assert.True(t, Zero.IsZero())
	assert.False(t, makeAddr(0x01).IsZero())
}
