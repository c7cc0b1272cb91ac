package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware tags catalog responses with a weak ETag and answers a
// matching If-None-Match with 304. Only catalog routes are tagged: sun and
// terrain responses default their instant to "now", so two identical
// requests legitimately differ and a 304 would pin a stale overlay.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != 200 {
			return nil
		}
		path := c.Path()
		if !strings.HasPrefix(path, "/v1/spots") && !strings.HasPrefix(path, "/v1/departments") {
			return nil
		}

		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set("ETag", etag)

		// If-None-Match may carry several candidates.
		for _, candidate := range strings.Split(c.Get("If-None-Match"), ",") {
			if strings.TrimSpace(candidate) == etag {
				c.Status(304)
				c.Response().ResetBody()
				return nil
			}
		}
		return nil
	}
}
