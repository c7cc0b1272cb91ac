package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// clampPagination reads offset/limit query values and normalizes them:
// negative offsets become 0, out-of-range limits become defaultLimit.
func clampPagination(c *fiber.Ctx, defaultLimit, maxLimit int) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	limit = c.QueryInt("limit", defaultLimit)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	return offset, limit
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses. Filter
// parameters on the current request (a department code, a search term) are
// carried into every link so the client can walk pages of a filtered list.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	var extra strings.Builder
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if k == "offset" || k == "limit" {
			return
		}
		fmt.Fprintf(&extra, "&%s=%s", k, value)
	})

	pageURL := func(offset int) string {
		return fmt.Sprintf("%s?offset=%d&limit=%d%s", c.Path(), offset, p.Limit, extra.String())
	}

	links := []string{fmt.Sprintf(`<%s>; rel="first"`, pageURL(0))}

	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, pageURL(prev)))
	}

	if p.Offset+p.Limit < p.Total {
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, pageURL(p.Offset+p.Limit)))
	}

	last := p.Total - p.Limit
	if last < 0 {
		last = 0
	}
	links = append(links, fmt.Sprintf(`<%s>; rel="last"`, pageURL(last)))

	c.Set("Link", strings.Join(links, ", "))
}
