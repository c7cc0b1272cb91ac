package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/ports"
)

// SpotService handles catalog business logic.
type SpotService struct {
	spots ports.SpotRepository
	cache ports.CacheService
}

// NewSpotService creates a new SpotService.
func NewSpotService(spots ports.SpotRepository, cache ports.CacheService) *SpotService {
	return &SpotService{spots: spots, cache: cache}
}

// FindNearby returns spots within radiusMeters of the given point.
func (s *SpotService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Spot, error) {
	if err := (domain.GeoPoint{Lat: lat, Lon: lon}).Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("spots:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var spots []domain.Spot
			if err := json.Unmarshal(data, &spots); err == nil {
				return spots, nil
			}
		}
	}

	spots, err := s.spots.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	// Cache for 5 minutes (the catalog changes slowly)
	if s.cache != nil {
		if data, err := json.Marshal(spots); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return spots, nil
}

// Search performs name search on the catalog.
func (s *SpotService) Search(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Spot, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("spots:search:%s:%d", query, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var spots []domain.Spot
			if err := json.Unmarshal(data, &spots); err == nil {
				return spots, nil
			}
		}
	}

	spots, err := s.spots.Search(ctx, query, near, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(spots); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return spots, nil
}

// GetByID returns a single spot.
func (s *SpotService) GetByID(ctx context.Context, id string) (*domain.Spot, error) {
	cacheKey := "spots:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var spot domain.Spot
			if err := json.Unmarshal(data, &spot); err == nil {
				return &spot, nil
			}
		}
	}

	spot, err := s.spots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(spot); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return spot, nil
}

// ListByDepartment returns spots in one Occitanie department.
func (s *SpotService) ListByDepartment(ctx context.Context, department string, limit int) ([]domain.Spot, error) {
	if department == "" {
		return nil, fmt.Errorf("department code must not be empty")
	}
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	return s.spots.ListByDepartment(ctx, department, limit)
}

// ListAll returns the full catalog (export paths only).
func (s *SpotService) ListAll(ctx context.Context) ([]domain.Spot, error) {
	return s.spots.ListAll(ctx)
}

// Import validates and upserts user-provided spots, returning the count
// actually stored. Invalid coordinates reject the single spot, not the batch.
func (s *SpotService) Import(ctx context.Context, spots []domain.Spot) (int, []error) {
	var errs []error
	valid := make([]domain.Spot, 0, len(spots))
	for _, spot := range spots {
		if spot.Name == "" {
			errs = append(errs, fmt.Errorf("spot without name skipped"))
			continue
		}
		if err := spot.Location.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("spot %q: %w", spot.Name, err))
			continue
		}
		valid = append(valid, spot)
	}
	if len(valid) == 0 {
		return 0, errs
	}
	if err := s.spots.UpsertBatch(ctx, valid); err != nil {
		return 0, append(errs, err)
	}
	return len(valid), errs
}
