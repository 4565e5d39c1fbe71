// Package validation holds input checks shared by the API handlers
// and the account layer.
package validation

import (
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize caps request bodies. Prediction submissions are a few
// hundred bytes; 1MB leaves generous headroom.
const MaxRequestSize = 1 << 20

// Usernames are lowercase letters, digits, dots, dashes, and
// underscores, 3 to 64 characters.
var usernameRe = regexp.MustCompile(`^[a-z0-9._-]{3,64}$`)

// RequestSizeMiddleware rejects bodies larger than maxSize. Reads past
// the cap fail inside the handler's bind call.
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidUsername reports whether name is an acceptable account name.
func IsValidUsername(name string) bool {
	return usernameRe.MatchString(name)
}

// SanitizeString trims whitespace, strips NUL bytes, and truncates to
// at most maxLen bytes without splitting a multi-byte rune. Applied to
// free-text fields before they reach storage.
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// AmountWithinBounds checks a transaction amount against the
// configured operating range. A zero max disables the upper bound.
func AmountWithinBounds(amount, min, max float64) bool {
	if amount < min {
		return false
	}
	if max > 0 && amount > max {
		return false
	}
	return true
}
