package units

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		v        *uint256.Int
		decimals int32
		want     string
	}{
		{"nil", nil, Decimals, "0"},
		{"zero", uint256.NewInt(0), Decimals, "0"},
		{"whole", uint256.MustFromDecimal("1022000000000000000000"), Decimals, "1022"},
		{"fraction", uint256.MustFromDecimal("1500000000000000000"), Decimals, "1.5"},
		{"one base unit", uint256.NewInt(1), Decimals, "0.000000000000000001"},
		{"no decimals", uint256.NewInt(1044), 0, "1044"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.v, tt.decimals))
		})
	}
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("12.5", Decimals)
	require.NoError(t, err)
	assert.Equal(t, "12500000000000000000", v.Dec())

	v, err = ParseAmount(" 1000 ", 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), v.Uint64())

	v, err = ParseAmount("0.000000000000000001", Decimals)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Uint64())
}

func TestParseAmount_Errors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"abc", ErrInvalidAmount},
		{"", ErrInvalidAmount},
		{"-1", ErrNegativeAmount},
		{"0.0000000000000000001", ErrTooPrecise},
		{"1e80", ErrAmountOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseAmount(tt.in, Decimals)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "1.5", "1022", "0.000000000000000001"} {
		v, err := ParseAmount(s, Decimals)
		require.NoError(t, err)
		assert.Equal(t, s, FormatAmount(v, Decimals))
	}
}

func TestParseBaseUnits(t *testing.T) {
	v, err := ParseBaseUnits("1022")
	require.NoError(t, err)
	assert.Equal(t, uint64(1022), v.Uint64())

	_, err = ParseBaseUnits("1.5")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFormatBps(t *testing.T) {
	assert.Equal(t, "2.2%", FormatBps(220))
	assert.Equal(t, "10%", FormatBps(1000))
	assert.Equal(t, "0%", FormatBps(0))
	assert.Equal(t, "0.01%", FormatBps(1))
}

func TestAnnualRate(t *testing.T) {
	assert.True(t, AnnualRate(0).IsZero())
	// 1.022^52 - 1 is roughly 210.06%.
	assert.Equal(t, "210.06%", FormatAPY(220))
}
