package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	ctx := context.Background()

	logger := New("error", "text")
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("info should be suppressed at error level")
	}
	if !logger.Enabled(ctx, slog.LevelError) {
		t.Error("error should be enabled at error level")
	}

	logger = New("debug", "json")
	if !logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("debug should be enabled at debug level")
	}
}

func TestContextLoggerRoundTrip(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != slog.Default() {
		t.Error("expected slog.Default for a bare context")
	}

	custom := New("info", "text")
	ctx = WithLogger(ctx, custom)
	if FromContext(ctx) != custom {
		t.Error("expected the stored logger back")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if id := RequestID(ctx); id != "" {
		t.Errorf("expected no request ID, got %q", id)
	}

	ctx = WithRequestID(ctx, "a1b2c3d4")
	ctx = WithRequestID(ctx, "e5f6a7b8")
	if id := RequestID(ctx); id != "e5f6a7b8" {
		t.Errorf("expected latest request ID, got %q", id)
	}
}

func TestLAttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "a1b2c3d4")

	L(ctx).Info("scored transaction")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if line["request_id"] != "a1b2c3d4" {
		t.Errorf("expected request_id on log line, got %v", line["request_id"])
	}
	if line["msg"] != "scored transaction" {
		t.Errorf("unexpected msg: %v", line["msg"])
	}
}
