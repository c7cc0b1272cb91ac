package http

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/usecases"
)

// parseAt reads the optional "at" query parameter (RFC 3339). Defaults to now.
func parseAt(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("at")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("at must be RFC 3339, e.g. 2026-06-21T12:00:00Z")
	}
	return at.UTC(), nil
}

// parseDate reads the optional "date" query parameter (YYYY-MM-DD). Defaults to today.
func parseDate(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD")
	}
	return date, nil
}

// parsePoint reads required lat/lon query parameters.
func parsePoint(c *fiber.Ctx) (domain.GeoPoint, error) {
	if c.Query("lat") == "" || c.Query("lon") == "" {
		return domain.GeoPoint{}, errors.New("lat and lon are required")
	}
	return domain.GeoPoint{
		Lat: c.QueryFloat("lat"),
		Lon: c.QueryFloat("lon"),
	}, nil
}

// parseBounds reads required min_lat/min_lon/max_lat/max_lon query parameters.
func parseBounds(c *fiber.Ctx) (domain.Bounds, error) {
	for _, key := range []string{"min_lat", "min_lon", "max_lat", "max_lon"} {
		if c.Query(key) == "" {
			return domain.Bounds{}, errors.New("min_lat, min_lon, max_lat and max_lon are required")
		}
	}
	return domain.Bounds{
		MinLat: c.QueryFloat("min_lat"),
		MinLon: c.QueryFloat("min_lon"),
		MaxLat: c.QueryFloat("max_lat"),
		MaxLon: c.QueryFloat("max_lon"),
	}, nil
}

// SunPositionHandler returns the sun's altitude and azimuth for a point and instant.
func SunPositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		at, err := parseAt(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		pos, err := deps.Sun.PositionAt(p, at)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"location":      p,
			"at":            at.Format(time.RFC3339),
			"altitude_deg":  pos.AltitudeDeg,
			"azimuth_deg":   pos.AzimuthDeg,
			"above_horizon": pos.AboveHorizon(),
		})
	}
}

// SunTimesHandler returns sunrise, solar noon and sunset for a point and day.
func SunTimesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		date, err := parseDate(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		times, err := deps.Sun.TimesFor(p, date)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"location":   p,
			"date":       date.Format("2006-01-02"),
			"sunrise":    times.Sunrise.Format(time.RFC3339),
			"solar_noon": times.SolarNoon.Format(time.RFC3339),
			"sunset":     times.Sunset.Format(time.RFC3339),
			"polar":      times.Polar,
		})
	}
}

// MarkerShadowHandler projects the shadow of a single marker. An explicit
// height overrides the configured marker height. A below-horizon sun yields
// a null shadow, not an error.
func MarkerShadowHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		at, err := parseAt(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		sun, err := deps.Sun.PositionAt(p, at)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		var seg domain.ShadowSegment
		var ok bool
		if height := c.QueryFloat("height", 0); height > 0 {
			seg, ok = deps.Shadows.Shadow(p, sun, height)
		} else {
			seg, ok, err = deps.Shadows.MarkerShadow(p, at)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
		}

		resp := fiber.Map{
			"location": p,
			"at":       at.Format(time.RFC3339),
			"sun": fiber.Map{
				"altitude_deg": sun.AltitudeDeg,
				"azimuth_deg":  sun.AzimuthDeg,
			},
		}
		if ok {
			resp["shadow"] = seg
		} else {
			resp["shadow"] = nil
		}
		return c.JSON(resp)
	}
}

// ExposureHandler computes one point's daily sun exposure.
func ExposureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parsePoint(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		date, err := parseDate(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		step := c.QueryInt("step", 0)

		sample, err := deps.Exposure.Daily(c.Context(), p, date, step)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		return c.JSON(sample)
	}
}

// ExposureGridHandler computes daily exposure for an NxN lattice over a
// bounding box. Grid order is row-major from the southwest corner.
func ExposureGridHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bounds, err := parseBounds(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		date, err := parseDate(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		n := c.QueryInt("n", 10)
		if n < 2 || n > 20 {
			return errBadRequest(c, "n must be between 2 and 20")
		}

		grid, err := domain.NewGrid(bounds, n)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		samples, err := deps.Exposure.Grid(c.Context(), grid, date)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"bounds":  bounds,
			"date":    date.Format("2006-01-02"),
			"n":       n,
			"samples": samples,
		})
	}
}

// TerrainHandler renders the terrain shadow overlay for a map viewport.
// Each client address gets its own render epoch: a client's repeat pans
// supersede its own in-flight renders (409 so it drops the stale result),
// while renders for different clients never interfere.
func TerrainHandler(deps *Dependencies) fiber.Handler {
	var (
		mu     sync.Mutex
		epochs = make(map[string]*usecases.ViewportEpoch)
	)
	epochFor := func(client string) *usecases.ViewportEpoch {
		mu.Lock()
		defer mu.Unlock()
		e, ok := epochs[client]
		if !ok {
			e = &usecases.ViewportEpoch{}
			epochs[client] = e
		}
		return e
	}

	return func(c *fiber.Ctx) error {
		bounds, err := parseBounds(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		at, err := parseAt(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zoom := c.QueryInt("zoom", 12)

		segments, err := deps.Terrain.RenderViewport(c.Context(), epochFor(c.IP()), bounds, zoom, at)
		if err != nil {
			if errors.Is(err, usecases.ErrStaleViewport) {
				return errConflict(c, "viewport superseded by a newer render")
			}
			return errBadRequest(c, err.Error())
		}

		return c.JSON(fiber.Map{
			"bounds":   bounds,
			"at":       at.Format(time.RFC3339),
			"zoom":     zoom,
			"segments": segments,
			"count":    len(segments),
		})
	}
}
