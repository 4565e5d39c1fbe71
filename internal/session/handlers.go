package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aberkane/fraudsight/internal/metrics"
	"github.com/aberkane/fraudsight/internal/users"
)

// Handler provides HTTP endpoints for account and session management
type Handler struct {
	manager   *Manager
	userStore users.Store
	secure    bool // Secure cookie flag, on in production
}

// NewHandler creates a new session handler
func NewHandler(m *Manager, userStore users.Store, secure bool) *Handler {
	return &Handler{manager: m, userStore: userStore, secure: secure}
}

// RegisterRequest is the request body for account creation
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and logs it in.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	u, err := users.New(req.Username, req.Email, req.Password, users.RoleUser)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userStore.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	h.login(c, u, http.StatusCreated)
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	u, err := users.Authenticate(c.Request.Context(), h.userStore, req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.login(c, u, http.StatusOK)
}

func (h *Handler) login(c *gin.Context, u *users.User, status int) {
	token, sess, err := h.manager.Issue(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(h.manager.Lifetime().Seconds()), "/", "", h.secure, true)

	c.JSON(status, gin.H{
		"user": gin.H{
			"id":       u.ID,
			"username": u.Username,
			"role":     u.Role,
		},
		"expiresAt": sess.ExpiresAt,
	})
}

// Logout revokes the current session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(CookieName); err == nil && token != "" {
		_ = h.manager.Revoke(c.Request.Context(), token)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the logged-in user.
func (h *Handler) Me(c *gin.Context) {
	u, ok := GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"role":      u.Role,
		"createdAt": u.CreatedAt,
	})
}
