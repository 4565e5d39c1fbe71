// Package idgen mints random identifiers for users, sessions, and
// request tracing. Transaction rows use google/uuid instead; these
// helpers cover the shorter prefixed and hex forms.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

func randomHex(numBytes int) string {
	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		// The kernel CSPRNG failing is not a condition the server can
		// limp through; minting guessable IDs would be worse.
		panic("idgen: crypto/rand: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// WithPrefix returns prefix followed by 24 hex characters, for example
// WithPrefix("usr_") for user IDs.
func WithPrefix(prefix string) string {
	return prefix + randomHex(12)
}

// Hex returns 2*numBytes hex characters of randomness. Session tokens
// and request IDs are built from this.
func Hex(numBytes int) string {
	return randomHex(numBytes)
}
