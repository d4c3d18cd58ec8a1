// Package identity normalizes the participant identifiers used across the
// ledger and envelope layers.
//
// The same identity may arrive with different letter casing from different
// callers (wallet tooling is inconsistent about checksummed hex), so every
// comparison in gradevault goes through Normalize rather than literal string
// equality.
package identity

import "strings"

// Normalize returns the canonical form of an identity: trimmed of
// surrounding whitespace and lowercased.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Equal reports whether two identities are the same after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// IsZero reports whether the identity is empty after normalization.
func IsZero(id string) bool {
	return Normalize(id) == ""
}
