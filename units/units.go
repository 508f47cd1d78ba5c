// Package units converts between base-unit integers and human readable
// decimal amounts and rates.
package units

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits of one whole token.
const Decimals int32 = 18

// WeeksPerYear is used to annualise a weekly rate.
const WeeksPerYear = 52

var bpsPerUnit = decimal.New(1, 4) // 10000

// FormatAmount renders a base-unit amount as a decimal string with
// trailing zeros removed, e.g. 1022000000000000000000 -> "1022".
func FormatAmount(v *uint256.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -decimals).String()
}

// ParseAmount parses a decimal string such as "12.5" into base units.
// Plain integers are accepted; at most decimals fractional digits.
func ParseAmount(s string, decimals int32) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrNegativeAmount, s)
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d", ErrTooPrecise, s, decimals)
	}
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %q", ErrAmountOverflow, s)
	}
	return v, nil
}

// ParseBaseUnits parses a non-negative integer count of base units.
func ParseBaseUnits(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAmount, s, err)
	}
	return v, nil
}

// FormatBps renders basis points as a percentage, e.g. 220 -> "2.2%".
func FormatBps(bps uint32) string {
	return decimal.New(int64(bps), -2).String() + "%"
}

// AnnualRate returns the yearly growth factor minus one implied by
// compounding a weekly rate of bps for WeeksPerYear weeks, as a fraction
// (0.12 means 12%).
func AnnualRate(bps uint32) decimal.Decimal {
	weekly := decimal.NewFromInt(int64(bps)).Div(bpsPerUnit)
	return decimal.NewFromInt(1).Add(weekly).Pow(decimal.NewFromInt(WeeksPerYear)).Sub(decimal.NewFromInt(1))
}

// FormatAPY renders AnnualRate(bps) as a percentage with two decimals.
func FormatAPY(bps uint32) string {
	return AnnualRate(bps).Shift(2).StringFixed(2) + "%"
}
