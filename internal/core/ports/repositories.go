package ports

import (
	"context"

	"github.com/camier/spots/internal/core/domain"
)

// SpotRepository persists catalog spots.
type SpotRepository interface {
	Upsert(ctx context.Context, spot *domain.Spot) error
	UpsertBatch(ctx context.Context, spots []domain.Spot) error
	GetByID(ctx context.Context, id string) (*domain.Spot, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Spot, error)
	Search(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Spot, error)
	ListByDepartment(ctx context.Context, department string, limit int) ([]domain.Spot, error)
	ListAll(ctx context.Context) ([]domain.Spot, error)
}

// ExposureDigestRepository persists precomputed daily exposure results.
type ExposureDigestRepository interface {
	Upsert(ctx context.Context, digest *domain.ExposureDigest) error
	Get(ctx context.Context, spotID, date string) (*domain.ExposureDigest, error)
	Delete(ctx context.Context, spotID, date string) error
}

// ElevationProvider returns terrain height in meters for a coordinate.
// Implementations may call a remote service; failure or timeout must be
// recoverable by the caller as "unknown, assume 0", never fatal.
type ElevationProvider interface {
	ElevationAt(ctx context.Context, lat, lon float64) (float64, error)
}
