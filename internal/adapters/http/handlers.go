package http

import (
	"github.com/gofiber/fiber/v2"
)

// CatalogStats holds statistics about the ingested spot catalog.
type CatalogStats struct {
	Spots      int    `json:"spots"`
	Digests    int    `json:"digests"`
	LastIngest string `json:"last_ingest,omitempty"`
}

// CatalogStatusHandler returns row counts from the catalog tables.
func CatalogStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CatalogStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM spots),
				(SELECT count(*) FROM exposure_digests),
				COALESCE((SELECT max(created_at)::text FROM spots), '')
		`)
		if err := row.Scan(&stats.Spots, &stats.Digests, &stats.LastIngest); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// NearbySpotsHandler returns spots within a radius of a point.
func NearbySpotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 5000)
		limit := c.QueryInt("limit", 20)

		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}

		spots, err := deps.Spots.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(spots)
	}
}

// SearchSpotsHandler performs fuzzy search on spot names.
func SearchSpotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)

		spots, err := deps.Spots.Search(c.Context(), query, nil, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(spots)
	}
}

// GetSpotHandler returns a single spot by ID.
func GetSpotHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "spot id is required")
		}
		spot, err := deps.Spots.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "spot not found")
		}
		return c.JSON(spot)
	}
}

// SpotExposureHandler returns the daily exposure digest for a spot.
// A stored digest is served as-is; otherwise the digest is computed and
// stored on demand.
func SpotExposureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "spot id is required")
		}
		date, err := parseDate(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		day := date.Format("2006-01-02")

		if digest, err := deps.Digests.Get(c.Context(), id, day); err == nil && digest != nil {
			c.Set("Cache-Control", "public, max-age=3600")
			return c.JSON(digest)
		}

		digest, err := deps.Digests.ComputeAndStore(c.Context(), id, day)
		if err != nil {
			return errNotFound(c, "spot not found or exposure could not be computed")
		}

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(digest)
	}
}

// DepartmentSpotsHandler lists spots in an INSEE department, best sun first.
func DepartmentSpotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("code")
		if code == "" {
			return errBadRequest(c, "department code is required")
		}

		spots, err := deps.Spots.ListByDepartment(c.Context(), code, 500)
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset, limit := clampPagination(c, 100, 200)

		total := len(spots)
		if offset >= total {
			spots = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			spots = spots[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: spots, Pagination: pg})
	}
}
