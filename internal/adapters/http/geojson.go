package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/camier/spots/internal/core/domain"
)

// geoJSONFeature is one RFC 7946 Feature with a Point geometry.
type geoJSONFeature struct {
	Type       string         `json:"type"`
	Geometry   geoJSONPoint   `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

func spotToFeature(s domain.Spot) geoJSONFeature {
	props := map[string]any{
		"id":          s.ID,
		"slug":        s.Slug,
		"name":        s.Name,
		"type":        s.Type,
		"elevation_m": s.ElevationM,
		"department":  s.Department,
	}
	if s.Description != "" {
		props["description"] = s.Description
	}
	if s.SunScore != nil {
		props["sun_score"] = *s.SunScore
	}
	if len(s.Tags) > 0 {
		props["tags"] = s.Tags
	}
	return geoJSONFeature{
		Type: "Feature",
		Geometry: geoJSONPoint{
			Type:        "Point",
			Coordinates: []float64{s.Location.Lon, s.Location.Lat},
		},
		Properties: props,
	}
}

// ExportGeoJSONHandler streams the catalog as a GeoJSON FeatureCollection.
// An optional department query narrows the export.
func ExportGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			spots []domain.Spot
			err   error
		)
		if dept := c.Query("department"); dept != "" {
			spots, err = deps.Spots.ListByDepartment(c.Context(), dept, 500)
		} else {
			spots, err = deps.Spots.ListAll(c.Context())
		}
		if err != nil {
			return errInternal(c, err.Error())
		}

		fc := geoJSONCollection{
			Type:     "FeatureCollection",
			Features: make([]geoJSONFeature, 0, len(spots)),
		}
		for _, s := range spots {
			fc.Features = append(fc.Features, spotToFeature(s))
		}

		c.Set("Content-Type", "application/geo+json")
		c.Set("Content-Disposition", `attachment; filename="spots.geojson"`)
		return c.JSON(fc)
	}
}

// ImportSpotsHandler accepts a GeoJSON FeatureCollection of user-created
// spots. Features with non-Point geometry or a missing name are rejected
// individually; the rest are upserted.
func ImportSpotsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fc geoJSONCollection
		if err := c.BodyParser(&fc); err != nil {
			return errBadRequest(c, "body must be a GeoJSON FeatureCollection")
		}
		if fc.Type != "FeatureCollection" || len(fc.Features) == 0 {
			return errBadRequest(c, "body must be a non-empty GeoJSON FeatureCollection")
		}
		if len(fc.Features) > 1000 {
			return errBadRequest(c, "too many features (max 1000 per import)")
		}

		spots := make([]domain.Spot, 0, len(fc.Features))
		skipped := 0
		for _, f := range fc.Features {
			if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) < 2 {
				skipped++
				continue
			}
			name, _ := f.Properties["name"].(string)
			if name == "" {
				skipped++
				continue
			}
			spotType, _ := f.Properties["type"].(string)
			if spotType == "" {
				spotType = "viewpoint"
			}
			dept, _ := f.Properties["department"].(string)
			desc, _ := f.Properties["description"].(string)

			spots = append(spots, domain.Spot{
				Slug:        domain.Slugify(name),
				Name:        name,
				Type:        spotType,
				Location:    domain.GeoPoint{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0]},
				Department:  dept,
				Description: desc,
			})
		}

		count, errs := deps.Spots.Import(c.Context(), spots)
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"imported": count,
			"skipped":  skipped + len(errs),
			"errors":   msgs,
		})
	}
}
