package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/ports"
	"github.com/camier/spots/internal/pkg/metrics"
)

// DigestService precomputes and stores daily exposure digests for catalog
// spots. The digest workflow drives it; the API reads through it.
type DigestService struct {
	exposure *ExposureService
	spots    ports.SpotRepository
	digests  ports.ExposureDigestRepository
}

// NewDigestService creates a new DigestService.
func NewDigestService(exposure *ExposureService, spots ports.SpotRepository, digests ports.ExposureDigestRepository) *DigestService {
	return &DigestService{exposure: exposure, spots: spots, digests: digests}
}

// ComputeAndStore computes the exposure digest for one spot and date
// (YYYY-MM-DD) and persists it.
func (d *DigestService) ComputeAndStore(ctx context.Context, spotID, date string) (*domain.ExposureDigest, error) {
	spot, err := d.spots.GetByID(ctx, spotID)
	if err != nil {
		return nil, fmt.Errorf("load spot %s: %w", spotID, err)
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}

	sample, err := d.exposure.Daily(ctx, spot.Location, day, 0)
	if err != nil {
		return nil, fmt.Errorf("daily exposure for %s: %w", spotID, err)
	}

	digest := &domain.ExposureDigest{
		SpotID:     spotID,
		Date:       date,
		SunHours:   sample.SunHours,
		FirstSun:   sample.FirstSun,
		LastSun:    sample.LastSun,
		ComputedAt: time.Now().UTC(),
	}
	if err := d.digests.Upsert(ctx, digest); err != nil {
		return nil, fmt.Errorf("store digest: %w", err)
	}

	metrics.ExposureComputations.WithLabelValues("digest").Inc()
	return digest, nil
}

// Get returns a stored digest, or nil when none has been computed yet.
func (d *DigestService) Get(ctx context.Context, spotID, date string) (*domain.ExposureDigest, error) {
	return d.digests.Get(ctx, spotID, date)
}

// Delete removes a digest (saga compensation when publication fails).
func (d *DigestService) Delete(ctx context.Context, spotID, date string) error {
	return d.digests.Delete(ctx, spotID, date)
}
