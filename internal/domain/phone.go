package domain

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a phone number has no valid Czech form.
var ErrInvalidPhone = errors.New("invalid phone number")

const czechPrefix = "+420"

// CanonicalPhone returns the +420XXXXXXXXX form of a Czech phone number.
// Any non-digit characters are ignored and a leading 420 is treated as the
// country code.
func CanonicalPhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimPrefix(b.String(), "420")
	if len(digits) != 9 {
		return "", ErrInvalidPhone
	}
	return czechPrefix + digits, nil
}
