package api

import (
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/ledcycle/internal/logging"
)

// requestLevel picks the log level of a finished request. Preflights and
// successful status polls are frequent, so they stay at debug.
func requestLevel(method, path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case method == "OPTIONS", path == "/api/status":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// loggingMiddleware logs every request once it completes.
func loggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	next(ctx)

	url := ctx.URL()
	attrs := []slog.Attr{
		slog.String("method", ctx.Method()),
		slog.String("path", url.Path),
		slog.Int("status", ctx.Status()),
		slog.Duration("duration", time.Since(start)),
		slog.String("remote_addr", ctx.RemoteAddr()),
	}
	if url.RawQuery != "" {
		attrs = append(attrs, slog.String("query", url.RawQuery))
	}
	if ua := ctx.Header("User-Agent"); ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}

	level := requestLevel(ctx.Method(), url.Path, ctx.Status())
	logging.GetLogger("api").LogAttrs(ctx.Context(), level, "HTTP request completed", attrs...)
}
