package registry

import (
	"strings"

	"github.com/holiman/uint256"
)

// Account identifies a party that can own tokens. It is an opaque,
// address-like value; the registry only ever compares accounts for equality.
type Account string

// NullAccount is the sentinel meaning "no account". It is never a valid
// owner or transfer recipient.
const NullAccount Account = ""

// IsNull reports whether the account is the null sentinel.
func (a Account) IsNull() bool {
	return a == NullAccount
}

// TokenID identifies a token. IDs are 256-bit unsigned integers, matching
// ERC-721 semantics. The type is comparable and usable as a map key.
type TokenID = uint256.Int

// ID builds a TokenID from a small integer. Convenient for tests and examples.
func ID(n uint64) TokenID {
	return *uint256.NewInt(n)
}

// ParseID parses a TokenID from a decimal string, or a hex string with a
// 0x prefix.
func ParseID(s string) (TokenID, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := uint256.FromHex(s)
		if err != nil {
			return TokenID{}, err
		}
		return *v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return TokenID{}, err
	}
	return *v, nil
}

// FormatID renders a TokenID as a decimal string. This is the canonical
// form used in event exports and the CLI.
func FormatID(id TokenID) string {
	return id.Dec()
}
