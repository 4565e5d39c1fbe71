package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aberkane/fraudsight/internal/users"
)

const (
	// ContextKeyUser is the key for storing the logged-in user in gin context
	ContextKeyUser = "currentUser"
	// ContextKeySession is the key for storing the resolved session
	ContextKeySession = "currentSession"
)

// Middleware resolves the session cookie and attaches the user to the
// request context when valid. Requests without a cookie pass through
// unauthenticated.
func Middleware(m *Manager, userStore users.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err == nil && token != "" {
			sess, err := m.Validate(c.Request.Context(), token)
			if err == nil {
				if u, err := userStore.GetByID(c.Request.Context(), sess.UserID); err == nil {
					c.Set(ContextKeySession, sess)
					c.Set(ContextKeyUser, u)
				}
			}
		}

		c.Next()
	}
}

// RequireUser rejects requests without a logged-in user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextKeyUser); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests unless the user carries the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := GetUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		if !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin role required",
			})
			return
		}
		c.Next()
	}
}

// GetUser returns the logged-in user from context (if authenticated)
func GetUser(c *gin.Context) (*users.User, bool) {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	return v.(*users.User), true
}

// IsAuthenticated checks if the request carries a valid session
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(ContextKeyUser)
	return exists
}
