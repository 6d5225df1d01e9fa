package model

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

var currencyCode = regexp.MustCompile(`^[A-Za-z]{3}$`)

// blank reports whether s is empty once surrounding whitespace is removed
func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// tooLong counts characters, not bytes, of the trimmed value
func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > max
}

// IsValidCurrency reports whether s is three ASCII letters, as in an ISO 4217 code
func IsValidCurrency(s string) bool {
	return currencyCode.MatchString(s)
}
