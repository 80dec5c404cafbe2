// Package phone canonicalizes destination phone numbers before they are
// handed to the messaging gateway, which accepts digits only.
package phone

import (
	"fmt"
	"strings"
)

// MinDigits is the minimum number of digits a destination must carry to be
// considered deliverable. Anything shorter is rejected before any network
// call or ledger write happens.
const MinDigits = 9

// Normalize strips every non-digit character from raw and validates the
// minimum length. It returns the digits-only destination or an error when
// the input cannot possibly be a deliverable number.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if len(digits) < MinDigits {
		return "", fmt.Errorf("invalid phone number %q: need at least %d digits, got %d", raw, MinDigits, len(digits))
	}
	return digits, nil
}

// IsValid reports whether raw normalizes to a deliverable destination.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}
