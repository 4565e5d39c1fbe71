package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aberkane/fraudsight/internal/session"
)

func newLimiter(t *testing.T, rpm, burst int) *Limiter {
	t.Helper()
	l := New(Config{
		RequestsPerMinute: rpm,
		BurstSize:         burst,
		CleanupInterval:   time.Minute,
	})
	t.Cleanup(l.Stop)
	return l
}

func TestBurstThenDeny(t *testing.T) {
	l := newLimiter(t, 60, 5)

	for i := 0; i < 5; i++ {
		if !l.Allow("203.0.113.7") {
			t.Fatalf("request %d should fit in the burst", i)
		}
	}
	if l.Allow("203.0.113.7") {
		t.Error("sixth immediate request should be denied")
	}
}

func TestBucketsAreIndependent(t *testing.T) {
	l := newLimiter(t, 60, 3)

	for i := 0; i < 3; i++ {
		l.Allow("203.0.113.7")
	}
	if l.Allow("203.0.113.7") {
		t.Error("drained key should be denied")
	}
	if !l.Allow("198.51.100.4") {
		t.Error("a fresh key should not be affected by another key's usage")
	}
}

func TestRefill(t *testing.T) {
	// 600 rpm refills one token every 100ms.
	l := newLimiter(t, 600, 1)

	if !l.Allow("k") {
		t.Fatal("first request should spend the only token")
	}
	if l.Allow("k") {
		t.Fatal("empty bucket should deny")
	}

	time.Sleep(120 * time.Millisecond)

	if !l.Allow("k") {
		t.Error("bucket should have refilled after the rate interval")
	}
}

func TestRefillCapsAtBurst(t *testing.T) {
	l := newLimiter(t, 6000, 2)

	l.Allow("k")
	time.Sleep(100 * time.Millisecond) // enough elapsed time for ~10 tokens

	allowed := 0
	for i := 0; i < 5; i++ {
		if l.Allow("k") {
			allowed++
		}
	}
	if allowed > 2 {
		t.Errorf("idle time should never bank more than the burst, got %d", allowed)
	}
}

func TestMiddlewareKeysOnSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := newLimiter(t, 60, 2)
	router := gin.New()
	router.Use(l.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		if token != "" {
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	// Drain the bucket for the first session.
	for i := 0; i < 2; i++ {
		if code := do("sess_aaaa"); code != http.StatusOK {
			t.Fatalf("request %d for session a: got %d", i, code)
		}
	}
	if code := do("sess_aaaa"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 for exhausted session, got %d", code)
	}

	// A different session from the same IP has its own bucket.
	if code := do("sess_bbbb"); code != http.StatusOK {
		t.Errorf("second session should not share the bucket, got %d", code)
	}

	// So does the anonymous per-IP bucket.
	if code := do(""); code != http.StatusOK {
		t.Errorf("anonymous request should not share the bucket, got %d", code)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.RequestsPerMinute != 60 || cfg.BurstSize != 10 || cfg.CleanupInterval != time.Minute {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
