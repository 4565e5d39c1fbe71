package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func serve(t *testing.T, mw gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/api/predict", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHardeningHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	w := serve(t, HeadersMiddleware(), req)

	for name, want := range hardeningHeaders {
		if got := w.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "frame-ancestors 'none'") {
		t.Errorf("CSP missing frame-ancestors directive: %q", csp)
	}
}

func TestCORSOriginMatching(t *testing.T) {
	cases := []struct {
		name            string
		origins         []string
		requestOrigin   string
		wantAllow       bool
		wantCredentials bool
	}{
		{"exact match", []string{"https://fraud.internal"}, "https://fraud.internal", true, true},
		{"unlisted origin", []string{"https://fraud.internal"}, "https://attacker.test", false, false},
		{"wildcard", []string{"*"}, "https://anywhere.test", true, false},
		{"empty list allows all", nil, "https://anywhere.test", true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
			req.Header.Set("Origin", tc.requestOrigin)
			w := serve(t, CORSMiddleware(tc.origins), req)

			gotAllow := w.Header().Get("Access-Control-Allow-Origin") != ""
			if gotAllow != tc.wantAllow {
				t.Errorf("Allow-Origin present = %v, want %v", gotAllow, tc.wantAllow)
			}
			gotCreds := w.Header().Get("Access-Control-Allow-Credentials") == "true"
			if gotCreds != tc.wantCredentials {
				t.Errorf("Allow-Credentials = %v, want %v", gotCreds, tc.wantCredentials)
			}
		})
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "https://fraud.internal")
	w := serve(t, CORSMiddleware([]string{"*"}), req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight response missing Allow-Methods")
	}
	if w.Body.Len() != 0 {
		t.Error("preflight must not reach the handler")
	}
}
