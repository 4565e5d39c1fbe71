package transactions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aberkane/fraudsight/internal/session"
	"github.com/aberkane/fraudsight/internal/users"
)

func setupHandlerTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewHandler(store, DefaultPageSize)

	r := gin.New()
	// Simulate the session middleware.
	r.Use(func(c *gin.Context) {
		switch c.GetHeader("X-Test-User") {
		case "admin":
			c.Set(session.ContextKeyUser, &users.User{ID: "usr_admin", Username: "root", Role: users.RoleAdmin})
		case "alice":
			c.Set(session.ContextKeyUser, &users.User{ID: "usr_alice", Username: "alice", Role: users.RoleUser})
		}
		c.Next()
	})

	api := r.Group("/api", session.RequireUser())
	handler.RegisterRoutes(api)
	return r
}

func get(router *gin.Engine, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedStore(t *testing.T) Store {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Append(ctx, storedTx("usr_alice", "France", 0, 0.1, now)))
	require.NoError(t, store.Append(ctx, storedTx("usr_alice", "Nigeria", 1, 0.9, now.Add(-time.Minute))))
	require.NoError(t, store.Append(ctx, storedTx("usr_bob", "Spain", 1, 0.8, now.Add(-2*time.Minute))))
	return store
}

func TestListHandler(t *testing.T) {
	router := setupHandlerTestRouter(seedStore(t))

	w := get(router, "/api/transactions", "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Transactions, 2, "only the caller's rows are listed")
	assert.False(t, page.HasMore)
	assert.Equal(t, "France", page.Transactions[0].Input.TransactionCountry, "newest first")
}

func TestListHandler_RequiresAuth(t *testing.T) {
	router := setupHandlerTestRouter(seedStore(t))
	w := get(router, "/api/transactions", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListHandler_InvalidCursor(t *testing.T) {
	router := setupHandlerTestRouter(seedStore(t))
	w := get(router, "/api/transactions?cursor=!!!bad!!!", "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsHandler_OwnerScope(t *testing.T) {
	router := setupHandlerTestRouter(seedStore(t))

	w := get(router, "/api/stats", "alice")
	require.Equal(t, http.StatusOK, w.Code)

	var sum Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.FraudCount)
	assert.InDelta(t, 0.5, sum.FraudRate, 1e-9)
}

func TestStatsHandler_AdminSeesGlobal(t *testing.T) {
	router := setupHandlerTestRouter(seedStore(t))

	w := get(router, "/api/stats", "admin")
	require.Equal(t, http.StatusOK, w.Code)

	var sum Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.FraudCount)
}

func TestCountriesHandler(t *testing.T) {
	router := setupHandlerTestRouter(seedStore(t))

	w := get(router, "/api/stats/countries", "alice")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Countries []CountryCount `json:"countries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Countries, 2)
}

func TestDailyHandler(t *testing.T) {
	router := setupHandlerTestRouter(seedStore(t))

	w := get(router, "/api/stats/daily", "alice")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Days  int          `json:"days"`
		Daily []DailyCount `json:"daily"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, DefaultDailyWindow, resp.Days)

	total := 0
	for _, d := range resp.Daily {
		total += d.Count
	}
	assert.Equal(t, 2, total)
}

func TestDailyHandler_BadWindow(t *testing.T) {
	router := setupHandlerTestRouter(seedStore(t))

	for _, q := range []string{"0", "-3", "9999", "abc"} {
		w := get(router, "/api/stats/daily?days="+q, "alice")
		assert.Equal(t, http.StatusBadRequest, w.Code, "days=%s", q)
	}
}
