package secrets

import (
	"fmt"
	"strings"
)

const opScheme = "op://"

// Ref is a parsed op://vault/item/field reference.
type Ref struct {
	Vault string
	Item  string
	Field string
	Raw   string
}

// IsRef returns true if the value starts with op://.
func IsRef(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), opScheme)
}

// ParseRef parses an op:// reference into vault, item, and field components.
func ParseRef(value string) (*Ref, error) {
	value = strings.TrimSpace(value)
	if !IsRef(value) {
		return nil, fmt.Errorf("not an op:// reference: %q", value)
	}
	parts := strings.SplitN(strings.TrimPrefix(value, opScheme), "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("invalid op:// reference %q: expected op://vault/item/field", value)
	}
	return &Ref{Vault: parts[0], Item: parts[1], Field: parts[2], Raw: value}, nil
}
