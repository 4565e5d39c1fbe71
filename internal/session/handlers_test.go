package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aberkane/fraudsight/internal/users"
)

func setupHandlerTestRouter() (*gin.Engine, users.Store) {
	gin.SetMode(gin.TestMode)

	userStore := users.NewMemoryStore()
	manager := NewManager(NewMemoryStore(), time.Hour)
	handler := NewHandler(manager, userStore, false)

	r := gin.New()
	r.Use(Middleware(manager, userStore))

	api := r.Group("/api")
	api.POST("/register", handler.Register)
	api.POST("/login", handler.Login)
	api.POST("/logout", handler.Logout)
	api.GET("/me", RequireUser(), handler.Me)
	api.GET("/admin/ping", RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r, userStore
}

func postJSON(router *gin.Engine, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestRegister_SetsSessionCookie(t *testing.T) {
	router, _ := setupHandlerTestRouter()

	w := postJSON(router, "/api/register", gin.H{
		"username": "alice",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Contains(t, cookie.Value, "sess_")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router, _ := setupHandlerTestRouter()

	w := postJSON(router, "/api/register", gin.H{"username": "alice", "password": "s3cret-pass"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(router, "/api/register", gin.H{"username": "alice", "password": "other-pass99"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	router, _ := setupHandlerTestRouter()

	w := postJSON(router, "/api/register", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Flow(t *testing.T) {
	router, userStore := setupHandlerTestRouter()

	u, err := users.New("alice", "", "s3cret-pass", users.RoleUser)
	require.NoError(t, err)
	require.NoError(t, userStore.Create(context.Background(), u))

	w := postJSON(router, "/api/login", gin.H{"username": "alice", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := sessionCookie(t, w)

	// /me with the session cookie
	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)

	var body struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(me.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.Username)
	assert.Equal(t, users.RoleUser, body.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	router, userStore := setupHandlerTestRouter()

	u, _ := users.New("alice", "", "s3cret-pass", users.RoleUser)
	require.NoError(t, userStore.Create(context.Background(), u))

	w := postJSON(router, "/api/login", gin.H{"username": "alice", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_RequiresSession(t *testing.T) {
	router, _ := setupHandlerTestRouter()

	req := httptest.NewRequest("GET", "/api/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	router, _ := setupHandlerTestRouter()

	w := postJSON(router, "/api/register", gin.H{"username": "alice", "password": "s3cret-pass"})
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := sessionCookie(t, w)

	out := postJSON(router, "/api/logout", nil, cookie)
	require.Equal(t, http.StatusOK, out.Code)

	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(cookie)
	me := httptest.NewRecorder()
	router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusUnauthorized, me.Code, "revoked session must not authenticate")
}

func TestRequireAdmin(t *testing.T) {
	router, userStore := setupHandlerTestRouter()

	admin, _ := users.New("root", "", "s3cret-pass", users.RoleAdmin)
	require.NoError(t, userStore.Create(context.Background(), admin))
	analyst, _ := users.New("alice", "", "s3cret-pass", users.RoleUser)
	require.NoError(t, userStore.Create(context.Background(), analyst))

	// No session
	req := httptest.NewRequest("GET", "/api/admin/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Regular user
	login := postJSON(router, "/api/login", gin.H{"username": "alice", "password": "s3cret-pass"})
	req = httptest.NewRequest("GET", "/api/admin/ping", nil)
	req.AddCookie(sessionCookie(t, login))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin
	login = postJSON(router, "/api/login", gin.H{"username": "root", "password": "s3cret-pass"})
	req = httptest.NewRequest("GET", "/api/admin/ping", nil)
	req.AddCookie(sessionCookie(t, login))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
