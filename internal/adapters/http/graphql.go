package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/camier/spots/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	spotType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Spot",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"slug":        &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"type":        &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: geoPointType},
			"elevation_m": &graphql.Field{Type: graphql.Float},
			"department":  &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"sun_score":   &graphql.Field{Type: graphql.Float},
			"distance":    &graphql.Field{Type: graphql.Float},
		},
	})

	sunPositionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SunPosition",
		Fields: graphql.Fields{
			"altitude_deg":  &graphql.Field{Type: graphql.Float},
			"azimuth_deg":   &graphql.Field{Type: graphql.Float},
			"above_horizon": &graphql.Field{Type: graphql.Boolean},
		},
	})

	sunTimesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SunTimes",
		Fields: graphql.Fields{
			"sunrise":    &graphql.Field{Type: graphql.String},
			"solar_noon": &graphql.Field{Type: graphql.String},
			"sunset":     &graphql.Field{Type: graphql.String},
			"polar":      &graphql.Field{Type: graphql.Boolean},
		},
	})

	exposureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Exposure",
		Fields: graphql.Fields{
			"point":       &graphql.Field{Type: geoPointType},
			"elevation_m": &graphql.Field{Type: graphql.Float},
			"sun_hours":   &graphql.Field{Type: graphql.Float},
			"first_sun":   &graphql.Field{Type: graphql.String},
			"last_sun":    &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"spotsNearby": &graphql.Field{
				Type:        graphql.NewList(spotType),
				Description: "Find spots near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Spots.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"searchSpots": &graphql.Field{
				Type:        graphql.NewList(spotType),
				Description: "Search spots by name (fuzzy matching)",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Spots.Search(p.Context, q, nil, limit)
				},
			},
			"spot": &graphql.Field{
				Type:        spotType,
				Description: "Get a spot by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Spots.GetByID(p.Context, id)
				},
			},
			"sunPosition": &graphql.Field{
				Type:        sunPositionType,
				Description: "Sun altitude and azimuth for a point and instant",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"at":  &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					at := time.Now().UTC()
					if raw, ok := p.Args["at"].(string); ok && raw != "" {
						parsed, err := time.Parse(time.RFC3339, raw)
						if err != nil {
							return nil, err
						}
						at = parsed
					}
					pos, err := deps.Sun.PositionAt(point, at)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"altitude_deg":  pos.AltitudeDeg,
						"azimuth_deg":   pos.AzimuthDeg,
						"above_horizon": pos.AboveHorizon(),
					}, nil
				},
			},
			"sunTimes": &graphql.Field{
				Type:        sunTimesType,
				Description: "Sunrise, solar noon and sunset for a point and day",
				Args: graphql.FieldConfigArgument{
					"lat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"date": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					date := time.Now().UTC()
					if raw, ok := p.Args["date"].(string); ok && raw != "" {
						parsed, err := time.Parse("2006-01-02", raw)
						if err != nil {
							return nil, err
						}
						date = parsed
					}
					times, err := deps.Sun.TimesFor(point, date)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"sunrise":    times.Sunrise.Format(time.RFC3339),
						"solar_noon": times.SolarNoon.Format(time.RFC3339),
						"sunset":     times.Sunset.Format(time.RFC3339),
						"polar":      times.Polar,
					}, nil
				},
			},
			"exposure": &graphql.Field{
				Type:        exposureType,
				Description: "Daily sun exposure for a point",
				Args: graphql.FieldConfigArgument{
					"lat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"date": &graphql.ArgumentConfig{Type: graphql.String},
					"step": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					date := time.Now().UTC()
					if raw, ok := p.Args["date"].(string); ok && raw != "" {
						parsed, err := time.Parse("2006-01-02", raw)
						if err != nil {
							return nil, err
						}
						date = parsed
					}
					step := p.Args["step"].(int)
					sample, err := deps.Exposure.Daily(p.Context, point, date, step)
					if err != nil {
						return nil, err
					}
					result := map[string]interface{}{
						"point":       sample.Point,
						"elevation_m": sample.ElevationM,
						"sun_hours":   sample.SunHours,
					}
					if sample.FirstSun != nil {
						result["first_sun"] = sample.FirstSun.Format(time.RFC3339)
					}
					if sample.LastSun != nil {
						result["last_sun"] = sample.LastSun.Format(time.RFC3339)
					}
					return result, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
