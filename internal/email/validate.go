package email

import (
	"regexp"
	"strings"
)

// addressPattern accepts an unquoted dot-separated or quoted local part, and a domain
// that is either a bracketed IPv4 literal or a hostname ending in a 2+ letter label.
// Whitespace in the local part means any Unicode space separator, vertical tab
// or BOM, not only RE2's ASCII \s. A quoted local part may not span lines.
var addressPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:` + space + `@"]+(\.[^<>()\[\]\\.,;:` + space + `@"]+)*)|("[^\n\r\x{2028}\x{2029}]+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

const space = `\s\x{0B}\p{Z}\x{FEFF}`

// Valid reports whether addr is a structurally valid email address.
// Matching is case-insensitive.
func Valid(addr string) bool {
	return addressPattern.MatchString(strings.ToLower(addr))
}

// Normalize trims and lower-cases addr. Hash-addressed providers key on this form.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
