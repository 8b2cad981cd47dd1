// Package addr handles account address validation. Addresses are
// 0x-prefixed 40-hex-digit identifiers (public-key-derived), normalized
// to lower case so the same account never splits across two records.
package addr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// addressRegex matches: 0x followed by exactly 40 hex digits.
// Example: 0x9fB29AAc15b9A4B7F17c3385939b007540f4d791
var addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ErrInvalidAddress is returned for anything that is not a well-formed
// 0x-hex account address.
var ErrInvalidAddress = errors.New("addr: invalid account address")

// Parse validates an account address and returns its canonical
// (lower-case) form.
func Parse(address string) (string, error) {
	if !addressRegex.MatchString(address) {
		return "", fmt.Errorf("%w: %q (expected 0x + 40 hex digits)", ErrInvalidAddress, address)
	}
	return strings.ToLower(address), nil
}
