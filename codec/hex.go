// Package codec implements the shared hex/address/integer parsing and
// normalization routines used by both the consensus verifier and the
// simulation replay verifier. Every operation here is total and pure: no
// I/O, no panics on malformed input, just a value or an error.
//
// The package is a thin, spec-shaped wrapper over go-ethereum's
// common/hexutil and holiman/uint256 rather than a hand-rolled hex parser:
// normalization and error messages follow the evidence-package wire format
// exactly, but the underlying decode/encode primitives are the same ones
// the rest of the Ethereum Go ecosystem relies on.
package codec

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrOddLength is returned when a byte-string hex payload has an odd number
// of hex digits.
var ErrOddLength = errors.New("codec: hex string of odd length")

// ErrEmptyHex is returned when a hex-u64 payload is empty after trimming
// the 0x prefix.
var ErrEmptyHex = errors.New("codec: empty hex value")

// NormalizeHex trims whitespace, strips an optional "0x"/"0X" prefix,
// lowercases the remaining hex digits, and re-prepends "0x". An empty
// input (after trimming) normalizes to "0x".
func NormalizeHex(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return "0x" + strings.ToLower(s)
}

// HexEncode hex-encodes data with a "0x" prefix. Empty input encodes to
// "0x".
func HexEncode(data []byte) string {
	if len(data) == 0 {
		return "0x"
	}
	return hexutil.Encode(data)
}

// ParseBytes parses a "0x"-prefixed, even-length hex string into bytes.
// "0x" alone decodes to an empty slice. Odd-length payloads are rejected.
func ParseBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed)%2 != 0 {
		return nil, ErrOddLength
	}
	if trimmed == "" {
		return []byte{}, nil
	}
	return hexutil.Decode("0x" + trimmed)
}

// ParseHexU64 parses a "0x"-prefixed hex string into a uint64. Empty
// strings (after trimming the prefix) are rejected.
func ParseHexU64(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		return 0, ErrEmptyHex
	}
	return hexutil.DecodeUint64("0x" + trimmed)
}
