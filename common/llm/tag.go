package llm

import (
	"strings"
	"unicode"
)

const (
	maxTagLength = 64
	untaggedTag  = "untagged"
)

// NormalizeTag lowercases value, joins whitespace runs with underscores and
// drops everything outside [a-z0-9_-]. The result is at most 64 bytes and
// "untagged" when nothing survives.
func NormalizeTag(value string) string {
	joined := strings.Join(strings.FieldsFunc(strings.ToLower(value), unicode.IsSpace), "_")

	var b strings.Builder
	b.Grow(len(joined))

	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	s := b.String()
	if len(s) > maxTagLength {
		s = s[:maxTagLength]
	}

	if s == "" {
		return untaggedTag
	}

	return s
}
