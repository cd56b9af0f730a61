package codec

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidAddress is returned when a value does not decode to exactly 20
// bytes.
var ErrInvalidAddress = errors.New("codec: address must be 20 bytes")

// ErrInvalidRoot is returned when a value does not decode to exactly 32
// bytes.
var ErrInvalidRoot = errors.New("codec: root must be 32 bytes")

// ParseAddress parses a "0x"-prefixed, case-insensitive 20-byte hex string
// into a common.Address.
func ParseAddress(s string) (common.Address, error) {
	b, err := ParseBytes(s)
	if err != nil {
		return common.Address{}, err
	}
	if len(b) != common.AddressLength {
		return common.Address{}, ErrInvalidAddress
	}
	return common.BytesToAddress(b), nil
}

// ParseRoot parses a "0x"-prefixed, case-insensitive 32-byte hex string
// into a common.Hash.
func ParseRoot(s string) (common.Hash, error) {
	b, err := ParseBytes(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, ErrInvalidRoot
	}
	return common.BytesToHash(b), nil
}

// NormalizeAddress lowercases the ASCII letters of an address string,
// leaving any "0x" prefix and digits untouched.
func NormalizeAddress(s string) string {
	return strings.ToLower(s)
}
