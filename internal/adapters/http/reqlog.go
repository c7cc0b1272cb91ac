package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	loggerKey
)

// requestIDFrom reads the ID assigned by the requestid middleware, or ""
// when the middleware has not run yet.
func requestIDFrom(c *fiber.Ctx) string {
	rid, _ := c.Locals("requestid").(string)
	return rid
}

// RequestIDLogMiddleware binds a request-scoped logger, with the request ID
// baked in, into the user context. Use cases and repos log through
// LoggerFromCtx so every line of a request carries the same ID.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := requestIDFrom(c)
		if rid == "" {
			return c.Next()
		}

		ctx := context.WithValue(c.Context(), requestIDKey, rid)
		ctx = context.WithValue(ctx, loggerKey, slog.Default().With("request_id", rid))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// LoggerFromCtx extracts the per-request slog.Logger from a context.
// Falls back to the default logger if none is set.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// RequestIDFromCtx returns the request ID bound by RequestIDLogMiddleware,
// or "" outside a request.
func RequestIDFromCtx(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}
