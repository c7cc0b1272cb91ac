package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		// Default cache times by endpoint pattern
		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0" // GraphQL varies wildly

		case strings.HasPrefix(path, "/v1/sun/terrain"):
			ttl = "no-store" // Viewport overlays are superseded constantly

		case strings.HasPrefix(path, "/v1/sun/position") || strings.HasPrefix(path, "/v1/sun/shadow"):
			ttl = "public, max-age=60" // Sun geometry moves ~0.25 deg/min

		case strings.HasPrefix(path, "/v1/sun/times") || strings.HasPrefix(path, "/v1/sun/exposure"):
			ttl = "public, max-age=3600" // Fixed per calendar day

		case strings.HasPrefix(path, "/v1/spots/nearby"):
			ttl = "public, max-age=300" // 5 min for location queries

		case strings.HasPrefix(path, "/v1/spots/search"):
			ttl = "public, max-age=300" // 5 min for search results

		case strings.Contains(path, "/spots/") && strings.Contains(path, "/"):
			ttl = "public, max-age=600" // 10 min for single spot

		case path == "/v1/catalog/status":
			ttl = "public, max-age=60" // Catalog stats: 1 min

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300" // 5 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
