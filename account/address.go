// Package account defines the 20-byte account identifier shared by the
// ledger, the holder registry and the conversion book.
package account

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/script"
)

// Size is the length of an account identifier (a P2PKH public key hash).
const Size = 20

// Address identifies a balance holder.
type Address [Size]byte

// Zero is the null account. Minting to it is rejected by the ledger.
var Zero Address

// IsZero reports whether a is the null account.
func (a Address) IsZero() bool {
	return a == Zero
}

// String renders the address as a mainnet base58check P2PKH address.
// It falls back to hex if encoding fails.
func (a Address) String() string {
	s, err := a.Encode(true)
	if err != nil {
		return hex.EncodeToString(a[:])
	}
	return s
}

// Encode renders the address for the given network.
func (a Address) Encode(mainnet bool) (string, error) {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return addr.AddressString, nil
}

// FromBytes copies a 20-byte slice into an Address.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Size {
		return a, fmt.Errorf("%w: got %d", ErrInvalidLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Parse accepts either a base58check P2PKH address or 40 hex characters.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if len(s) == 2*Size {
		if raw, err := hex.DecodeString(s); err == nil {
			return FromBytes(raw)
		}
	}

	addr, err := script.NewAddressFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	return FromBytes([]byte(addr.PublicKeyHash))
}

// MustParse is like Parse but panics on error. Intended for tests and
// constants.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}
