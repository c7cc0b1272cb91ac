package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Probe and scrape endpoints poll every few seconds and would drown the
// access log in noise.
var accessLogSkip = map[string]bool{
	"/v1/health": true,
	"/v1/ready":  true,
	"/metrics":   true,
}

// AccessLogMiddleware writes one structured line per request: info for
// success, warn for client errors, error for 5xx or a handler error.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Path()
		if accessLogSkip[path] {
			return err
		}

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", c.Method()),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("client", c.IP()),
			slog.String("request_id", requestIDFrom(c)),
		}

		level := slog.LevelInfo
		switch {
		case err != nil || status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		slog.LogAttrs(c.Context(), level, c.Method()+" "+path, attrs...)
		return err
	}
}
