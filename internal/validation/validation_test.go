package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

func TestIsValidUsername(t *testing.T) {
	valid := []string{"alice", "fraud.analyst-2", "a_b_c", "abc"}
	for _, name := range valid {
		if !IsValidUsername(name) {
			t.Errorf("IsValidUsername(%q) = false, want true", name)
		}
	}

	invalid := []string{"", "ab", "Alice", "alice bob", "alice@corp", strings.Repeat("a", 65)}
	for _, name := range invalid {
		if IsValidUsername(name) {
			t.Errorf("IsValidUsername(%q) = true, want false", name)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"  hello  ", 10, "hello"},
		{"hello world", 5, "hello"},
		{"hello\x00world", 20, "helloworld"},
		// Truncation never splits a multi-byte rune; the straddling
		// rune is dropped whole.
		{"héllo", 2, "h"},
		{"ané@example.com", 3, "an"},
	}
	for _, tc := range cases {
		got := SanitizeString(tc.input, tc.maxLen)
		if got != tc.want {
			t.Errorf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("SanitizeString(%q, %d) = %q is not valid UTF-8", tc.input, tc.maxLen, got)
		}
	}
}

func TestAmountWithinBounds(t *testing.T) {
	cases := []struct {
		amount, min, max float64
		want             bool
	}{
		{50, 0, 100, true},
		{50, 0, 0, true}, // zero max means no ceiling
		{0, 0, 100, true},
		{100, 0, 100, true},
		{101, 0, 100, false},
		{5, 10, 100, false},
	}
	for _, tc := range cases {
		if got := AmountWithinBounds(tc.amount, tc.min, tc.max); got != tc.want {
			t.Errorf("AmountWithinBounds(%v, %v, %v) = %v, want %v", tc.amount, tc.min, tc.max, got, tc.want)
		}
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestSizeMiddleware(16))
	router.POST("/api/predict", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.Status(http.StatusOK)
	})

	small := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"a":1}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, small)
	if w.Code != http.StatusOK {
		t.Errorf("small body: got %d, want 200", w.Code)
	}

	big := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, big)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body: got %d, want 413", w.Code)
	}
}
