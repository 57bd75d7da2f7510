// Package keys holds the license key normalization rules shared by the
// server and the client SDK. Keys are compared in normalized form only.
package keys

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// minKeyLength is the shortest key the system accepts after the product
// prefix. Generated keys are prefix + 36-char UUID; hand-issued keys may be
// shorter but never this short.
const minKeyLength = 8

// Normalize trims surrounding whitespace, applies NFKC so keys pasted from
// rich text (fullwidth forms, compatibility characters) compare equal, and
// uppercases the result.
func Normalize(key string) string {
	return strings.ToUpper(norm.NFKC.String(strings.TrimSpace(key)))
}

// Valid reports whether a normalized key has the given product prefix and a
// plausible length. It performs no I/O.
func Valid(key, prefix string) bool {
	if prefix != "" && !strings.HasPrefix(key, Normalize(prefix)) {
		return false
	}
	return len(key) >= len(prefix)+minKeyLength
}
