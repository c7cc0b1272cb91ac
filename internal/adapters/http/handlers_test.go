package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/camier/spots/internal/adapters/http"
	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/usecases"
)

// ---- Mock repositories ----

type mockSpotRepo struct {
	findNearbyFn  func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Spot, error)
	getByIDFn     func(ctx context.Context, id string) (*domain.Spot, error)
	searchFn      func(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Spot, error)
	listByDeptFn  func(ctx context.Context, department string, limit int) ([]domain.Spot, error)
	listAllFn     func(ctx context.Context) ([]domain.Spot, error)
	upsertBatchFn func(ctx context.Context, s []domain.Spot) error
}

func (m *mockSpotRepo) Upsert(ctx context.Context, s *domain.Spot) error { return nil }
func (m *mockSpotRepo) UpsertBatch(ctx context.Context, s []domain.Spot) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, s)
	}
	return nil
}
func (m *mockSpotRepo) FindNearby(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Spot, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radius, limit)
	}
	return nil, nil
}
func (m *mockSpotRepo) GetByID(ctx context.Context, id string) (*domain.Spot, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockSpotRepo) Search(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Spot, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, near, limit)
	}
	return nil, nil
}
func (m *mockSpotRepo) ListByDepartment(ctx context.Context, department string, limit int) ([]domain.Spot, error) {
	if m.listByDeptFn != nil {
		return m.listByDeptFn(ctx, department, limit)
	}
	return nil, nil
}
func (m *mockSpotRepo) ListAll(ctx context.Context) ([]domain.Spot, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

type mockDigestRepo struct {
	upsertFn func(ctx context.Context, d *domain.ExposureDigest) error
	getFn    func(ctx context.Context, spotID, date string) (*domain.ExposureDigest, error)
}

func (m *mockDigestRepo) Upsert(ctx context.Context, d *domain.ExposureDigest) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, d)
	}
	return nil
}
func (m *mockDigestRepo) Get(ctx context.Context, spotID, date string) (*domain.ExposureDigest, error) {
	if m.getFn != nil {
		return m.getFn(ctx, spotID, date)
	}
	return nil, fmt.Errorf("no digest")
}
func (m *mockDigestRepo) Delete(ctx context.Context, spotID, date string) error { return nil }

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	sun := usecases.NewSunService()
	shadows := usecases.NewShadowService(sun, 1000, 20)
	exposure := usecases.NewExposureService(sun, nil, nil, 30)
	terrain := usecases.NewTerrainService(sun, shadows, nil, usecases.TerrainConfig{
		HeightM:    10,
		MinShadowM: 10,
		GridLow:    5,
		GridMedium: 10,
		GridHigh:   20,
		ZoomMedium: 12,
		ZoomHigh:   15,
	})

	d := &handler.Dependencies{
		Sun:      sun,
		Shadows:  shadows,
		Exposure: exposure,
		Terrain:  terrain,
		Spots:    usecases.NewSpotService(&mockSpotRepo{}, nil),
		Digests:  usecases.NewDigestService(exposure, &mockSpotRepo{}, &mockDigestRepo{}),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---- Sun handler tests ----

func TestSunPosition_SummerNoon(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sun/position?lat=43.6047&lon=1.4442&at=2026-06-21T12:00:00Z", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		AltitudeDeg  float64 `json:"altitude_deg"`
		AzimuthDeg   float64 `json:"azimuth_deg"`
		AboveHorizon bool    `json:"above_horizon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if !result.AboveHorizon {
		t.Error("midsummer noon in Toulouse should be above the horizon")
	}
	if result.AltitudeDeg < 60 || result.AltitudeDeg > 75 {
		t.Errorf("unexpected solstice noon altitude: %.2f", result.AltitudeDeg)
	}
}

func TestSunPosition_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sun/position", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Status int    `json:"status"`
		Code   string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request error, got %s", apiErr.Code)
	}
}

func TestSunPosition_BadLatitude(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sun/position?lat=95&lon=1.44", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSunTimes_Success(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sun/times?lat=43.6047&lon=1.4442&date=2026-06-21", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
		Polar   bool   `json:"polar"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Polar {
		t.Error("Toulouse is not polar")
	}
	sunrise, _ := time.Parse(time.RFC3339, result.Sunrise)
	sunset, _ := time.Parse(time.RFC3339, result.Sunset)
	if !sunrise.Before(sunset) {
		t.Errorf("sunrise %v should precede sunset %v", sunrise, sunset)
	}
}

func TestMarkerShadow_Night(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sun/shadow?lat=43.6047&lon=1.4442&at=2026-06-21T00:30:00Z", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("below-horizon shadow request must not fail: %d", resp.StatusCode)
	}

	var result struct {
		Shadow *domain.ShadowSegment `json:"shadow"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Shadow != nil {
		t.Error("expected null shadow at night")
	}
}

func TestMarkerShadow_Morning(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sun/shadow?lat=43.6047&lon=1.4442&at=2026-06-21T07:00:00Z&height=10", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Shadow *domain.ShadowSegment `json:"shadow"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Shadow == nil {
		t.Fatal("expected a shadow on a summer morning")
	}
	if result.Shadow.LengthM <= 0 || result.Shadow.LengthM > 1000 {
		t.Errorf("shadow length out of range: %.2f", result.Shadow.LengthM)
	}
}

func TestExposure_Success(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sun/exposure?lat=43.6047&lon=1.4442&date=2026-06-21", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var sample domain.ExposureSample
	json.NewDecoder(resp.Body).Decode(&sample)
	if sample.SunHours < 10 {
		t.Errorf("midsummer Toulouse should get >10 sun hours, got %.1f", sample.SunHours)
	}
}

func TestExposureGrid_Success(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET",
		"/v1/sun/exposure/grid?min_lat=43.5&min_lon=1.3&max_lat=43.7&max_lon=1.5&date=2026-06-21&n=3", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		N       int                     `json:"n"`
		Samples []domain.ExposureSample `json:"samples"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Samples) != 9 {
		t.Errorf("expected 9 samples for a 3x3 grid, got %d", len(result.Samples))
	}
}

func TestExposureGrid_BadN(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET",
		"/v1/sun/exposure/grid?min_lat=43.5&min_lon=1.3&max_lat=43.7&max_lon=1.5&n=50", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTerrain_Success(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET",
		"/v1/sun/terrain?min_lat=43.5&min_lon=1.3&max_lat=43.7&max_lon=1.5&zoom=13&at=2026-06-21T07:00:00Z", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Count    int                    `json:"count"`
		Segments []domain.ShadowSegment `json:"segments"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Count == 0 {
		t.Error("expected shadow segments on a summer morning viewport")
	}
}

func TestTerrain_MissingBounds(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/sun/terrain?zoom=13", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Spot handler tests ----

func TestNearbySpots_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Spots = usecases.NewSpotService(&mockSpotRepo{
			findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Spot, error) {
				return []domain.Spot{
					{ID: "s1", Name: "Cascade d'Ars", Location: domain.GeoPoint{Lat: 42.762, Lon: 1.387}},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/spots/nearby?lat=42.76&lon=1.38&radius=5000", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var spots []domain.Spot
	json.NewDecoder(resp.Body).Decode(&spots)
	if len(spots) != 1 {
		t.Errorf("expected 1 spot, got %d", len(spots))
	}
}

func TestNearbySpots_MissingParams(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/spots/nearby", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNearbySpots_BadRadius(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/spots/nearby?lat=43.6&lon=1.44&radius=60000", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSearchSpots_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/spots/search", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetSpot_NotFound(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Spots = usecases.NewSpotService(&mockSpotRepo{
			getByIDFn: func(ctx context.Context, id string) (*domain.Spot, error) {
				return nil, fmt.Errorf("not found")
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/spots/nonexistent-id", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSpotExposure_ServesStoredDigest(t *testing.T) {
	stored := &domain.ExposureDigest{
		ID:       "d1",
		SpotID:   "s1",
		Date:     "2026-06-21",
		SunHours: 14.5,
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		exposure := usecases.NewExposureService(usecases.NewSunService(), nil, nil, 30)
		d.Digests = usecases.NewDigestService(exposure, &mockSpotRepo{}, &mockDigestRepo{
			getFn: func(ctx context.Context, spotID, date string) (*domain.ExposureDigest, error) {
				return stored, nil
			},
		})
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/spots/s1/exposure?date=2026-06-21", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var digest domain.ExposureDigest
	json.NewDecoder(resp.Body).Decode(&digest)
	if digest.SunHours != 14.5 {
		t.Errorf("expected stored digest with 14.5 sun hours, got %.1f", digest.SunHours)
	}
}

func TestDepartmentSpots_Pagination(t *testing.T) {
	spots := make([]domain.Spot, 5)
	for i := range spots {
		spots[i] = domain.Spot{ID: fmt.Sprintf("s%d", i), Name: fmt.Sprintf("Spot %d", i), Department: "31"}
	}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Spots = usecases.NewSpotService(&mockSpotRepo{
			listByDeptFn: func(ctx context.Context, department string, limit int) ([]domain.Spot, error) {
				return spots, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/departments/31/spots?offset=2&limit=2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.Spot `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Pagination.Total != 5 {
		t.Errorf("expected total 5, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 2 {
		t.Errorf("expected 2 spots in page, got %d", len(result.Data))
	}
	if resp.Header.Get("Link") == "" {
		t.Error("expected RFC 8288 Link header")
	}
}

func TestExportGeoJSON_FeatureCollection(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Spots = usecases.NewSpotService(&mockSpotRepo{
			listAllFn: func(ctx context.Context) ([]domain.Spot, error) {
				return []domain.Spot{
					{ID: "s1", Slug: "cascade-d-ars", Name: "Cascade d'Ars", Type: "waterfall",
						Location: domain.GeoPoint{Lat: 42.762, Lon: 1.387}, Department: "09"},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/spots/export.geojson", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	json.NewDecoder(resp.Body).Decode(&fc)
	if fc.Type != "FeatureCollection" {
		t.Fatalf("expected FeatureCollection, got %q", fc.Type)
	}
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	// GeoJSON coordinates are [lon, lat]
	if fc.Features[0].Geometry.Coordinates[0] != 1.387 {
		t.Errorf("expected lon first in coordinates, got %v", fc.Features[0].Geometry.Coordinates)
	}
	if fc.Features[0].Properties["name"] != "Cascade d'Ars" {
		t.Errorf("expected spot name in properties, got %v", fc.Features[0].Properties)
	}
}

func TestImportSpots_ValidFeatures(t *testing.T) {
	var stored []domain.Spot
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Spots = usecases.NewSpotService(&mockSpotRepo{
			upsertBatchFn: func(ctx context.Context, s []domain.Spot) error {
				stored = s
				return nil
			},
		}, nil)
	})
	app := setupApp(deps)

	body := `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1.387, 42.762]},
			 "properties": {"name": "Cascade d'Ars", "type": "waterfall", "department": "09"}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.5, 42.74]},
			 "properties": {}}
		]
	}`
	req := httptest.NewRequest("POST", "/v1/spots/import", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", result.Imported)
	}
	if result.Skipped != 1 {
		t.Errorf("expected the nameless feature skipped, got %d", result.Skipped)
	}
	if len(stored) != 1 || stored[0].Slug != "cascade-d-ars" {
		t.Errorf("expected slugified spot stored, got %+v", stored)
	}
}

func TestImportSpots_NotACollection(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/spots/import", jsonBody(`{"type":"Feature"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- System endpoint tests ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_NoDB(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503 without a database, got %d", resp.StatusCode)
	}
}

func TestAPIVersionHeader(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if v := resp.Header.Get("X-API-Version"); v != "1.0.0" {
		t.Errorf("expected X-API-Version 1.0.0, got %q", v)
	}
}

func TestDeprecatedShadowAlias(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/shadow?lat=43.6&lon=1.44&at=2026-06-21T09:00:00Z", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header on legacy shadow route")
	}
	if resp.Header.Get("Sunset") == "" {
		t.Error("expected Sunset header on legacy shadow route")
	}
}

func TestNearbySpots_CacheControlHeader(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/spots/nearby?lat=43.6&lon=1.44&radius=500", nil)
	resp, _ := app.Test(req, -1)
	if cc := resp.Header.Get("Cache-Control"); cc == "" {
		t.Error("expected Cache-Control header on nearby spots")
	}
}

// ---- GraphQL tests ----

func TestGraphQL_SunPosition(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"query":"{ sunPosition(lat: 43.6047, lon: 1.4442, at: \"2026-06-21T12:00:00Z\") { altitude_deg above_horizon } }"}`
	req := httptest.NewRequest("POST", "/graphql", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			SunPosition struct {
				AltitudeDeg  float64 `json:"altitude_deg"`
				AboveHorizon bool    `json:"above_horizon"`
			} `json:"sunPosition"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if !result.Data.SunPosition.AboveHorizon {
		t.Error("expected above-horizon sun at midsummer noon")
	}
}

func TestGraphQL_SpotsNearby(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Spots = usecases.NewSpotService(&mockSpotRepo{
			findNearbyFn: func(ctx context.Context, lat, lon, radius float64, limit int) ([]domain.Spot, error) {
				return []domain.Spot{{ID: "s1", Name: "Lac d'Oô"}}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	body := `{"query":"{ spotsNearby(lat: 42.74, lon: 0.50) { id name } }"}`
	req := httptest.NewRequest("POST", "/graphql", jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			SpotsNearby []struct {
				Name string `json:"name"`
			} `json:"spotsNearby"`
		} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data.SpotsNearby) != 1 || result.Data.SpotsNearby[0].Name != "Lac d'Oô" {
		t.Errorf("unexpected graphql result: %+v", result.Data.SpotsNearby)
	}
}
