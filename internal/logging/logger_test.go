package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// capture installs a JSON logger over a buffer for the duration of the test.
func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, level, "json")
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestFromContext_Fields(t *testing.T) {
	buf := capture(t, "info")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = WithOperation(ctx, "op-9", "merge")
	FromContext(ctx).Info("done", "rows", 3)

	entry := decode(t, buf)
	for key, want := range map[string]any{"request_id": "req-1", "op_id": "op-9", "op": "merge", "msg": "done"} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %v", key, entry[key], want)
		}
	}
	if entry["rows"] != float64(3) {
		t.Errorf("rows = %v, want 3", entry["rows"])
	}
}

func TestFromContext_Plain(t *testing.T) {
	buf := capture(t, "info")

	FromContext(context.Background()).Info("hello")

	entry := decode(t, buf)
	for _, key := range []string{"request_id", "op_id", "op"} {
		if _, ok := entry[key]; ok {
			t.Errorf("unexpected %s in %v", key, entry)
		}
	}
}

func TestSetupWriter_Level(t *testing.T) {
	buf := capture(t, "warn")

	WithFields(context.Background(), "table", "t").Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}
	WithFields(context.Background(), "table", "t").Warn("shown")
	if !strings.Contains(buf.String(), `"table":"t"`) {
		t.Errorf("missing field in %s", buf.String())
	}
}

func TestOperationID(t *testing.T) {
	if got := OperationID(context.Background()); got != "" {
		t.Errorf("OperationID() = %q, want empty", got)
	}
	ctx := WithOperation(context.Background(), "abc", "concat")
	if got := OperationID(ctx); got != "abc" {
		t.Errorf("OperationID() = %q, want %q", got, "abc")
	}
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "debug", "text")).Debug("x", "k", "v")
	if !strings.Contains(buf.String(), "k=v") {
		t.Errorf("text handler output = %q", buf.String())
	}
}
