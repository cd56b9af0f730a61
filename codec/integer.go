package codec

import (
	"errors"
	"strings"

	"github.com/holiman/uint256"
)

// ErrInvalidInteger is returned when a string is neither valid decimal nor
// valid "0x"-prefixed hex.
var ErrInvalidInteger = errors.New("codec: invalid unsigned integer")

// ParseUint256 parses an unsigned 256-bit integer from either decimal or
// "0x"-prefixed hex form, trimming surrounding whitespace first.
func ParseUint256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidInteger
	}

	v := new(uint256.Int)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if err := v.SetFromHex("0x" + s[2:]); err != nil {
			return nil, ErrInvalidInteger
		}
		return v, nil
	}
	if err := v.SetFromDecimal(s); err != nil {
		return nil, ErrInvalidInteger
	}
	return v, nil
}
