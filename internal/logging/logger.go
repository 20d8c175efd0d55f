// Package logging configures log/slog for the server and the CLI.
//
// Loggers taken from a request context carry chi's request id, so every
// line a job writes can be traced back to the HTTP request that started it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup installs the default logger, writing to stdout.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a logger writing to w. The CLI passes stderr so stdout only
// carries command output.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
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

// FromContext returns the default logger, tagged with request_id when ctx
// came through chi's RequestID middleware.
//
//	func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
//	    logging.FromContext(r.Context()).Info("listing sheets", "file", name)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}

// WithFields returns FromContext(ctx) with extra attributes.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

// ForJob returns the logger for one chunk or combine job. Every entry carries
// op and job_id; attrs follow.
//
//	logger := logging.ForJob(ctx, "chunk", jobID, "file", name)
//	logger.Info("job started")
//	logger.Info("job completed", "chunks", n)
func ForJob(ctx context.Context, op, jobID string, attrs ...any) *slog.Logger {
	return WithFields(ctx, append([]any{"op", op, "job_id", jobID}, attrs...)...)
}
