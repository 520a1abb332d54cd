// Package logging configures log/slog for tabkit and carries per-request
// and per-operation fields through contexts.
//
// A logger obtained with FromContext includes chi's request_id when the
// request passed through middleware.RequestID, and the op_id and op of the
// table operation started with WithOperation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default slog logger writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) *slog.Logger {
	return SetupWriter(os.Stdout, level, format)
}

// SetupWriter is Setup with an explicit destination. The CLI logs to
// stderr so stdout stays free for table output.
func SetupWriter(w io.Writer, level, format string) *slog.Logger {
	logger := slog.New(NewHandler(w, level, format))
	slog.SetDefault(logger)
	return logger
}

// NewHandler builds a text or JSON handler at the given level.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type opKey struct{}

type operation struct {
	id   string
	name string
}

// WithOperation tags ctx with a table operation. Loggers derived from the
// returned context carry op_id and op.
func WithOperation(ctx context.Context, id, name string) context.Context {
	return context.WithValue(ctx, opKey{}, operation{id: id, name: name})
}

// OperationID returns the id set by WithOperation, or "".
func OperationID(ctx context.Context) string {
	op, _ := ctx.Value(opKey{}).(operation)
	return op.id
}

// FromContext returns the default logger enriched with the request id and
// operation found in ctx.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if op, ok := ctx.Value(opKey{}).(operation); ok {
		logger = logger.With("op_id", op.id, "op", op.name)
	}

	return logger
}

// WithFields returns FromContext(ctx) with additional fields.
//
//	log := logging.WithFields(ctx, "table", name)
//	log.Info("table loaded", "rows", f.Len())
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
