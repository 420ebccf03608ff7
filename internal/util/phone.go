package util

import "strings"

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// NormalizePhone strips every non-digit character from user input.
// "+255 712-345-678" and "255712345678" normalize to the same value.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether a normalized entry has an acceptable digit length.
func ValidPhone(digits string) bool {
	return len(digits) >= minPhoneDigits && len(digits) <= maxPhoneDigits
}
