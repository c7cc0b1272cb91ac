package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/ports"
	"github.com/camier/spots/internal/pkg/metrics"
)

// maxExposureWorkers bounds concurrent per-point computations in grid fan-out.
const maxExposureWorkers = 16

// ExposureService aggregates daily direct-sun duration per point. The sum is
// an intentionally coarse Riemann approximation: the sun-up interval
// [sunrise, sunset] is sampled at a fixed step and each sample contributes
// one full step. Rise and set already define the above-horizon window
// (refraction and solar-disc radius included), so samples inside it need no
// per-instant altitude check; a geometric altitude>0 test would drop the
// edge samples and undercount every day by about an hour. Halving the step
// halves the rounding error.
type ExposureService struct {
	sun   *SunService
	elev  ports.ElevationProvider
	cache ports.CacheService

	defaultStepMinutes int
}

// NewExposureService creates an ExposureService. elev and cache may be nil;
// elevation then reports 0 and results are not cached.
func NewExposureService(sun *SunService, elev ports.ElevationProvider, cache ports.CacheService, defaultStepMinutes int) *ExposureService {
	if defaultStepMinutes <= 0 {
		defaultStepMinutes = 30
	}
	return &ExposureService{sun: sun, elev: elev, cache: cache, defaultStepMinutes: defaultStepMinutes}
}

// Daily computes one point's sun exposure for the calendar day of date.
// stepMinutes <= 0 selects the configured default. Polar night yields zero
// hours with nil first/last instants.
func (s *ExposureService) Daily(ctx context.Context, p domain.GeoPoint, date time.Time, stepMinutes int) (domain.ExposureSample, error) {
	if err := p.Validate(); err != nil {
		return domain.ExposureSample{}, err
	}
	if stepMinutes <= 0 {
		stepMinutes = s.defaultStepMinutes
	}
	if stepMinutes > 180 {
		stepMinutes = 180
	}

	cacheKey := fmt.Sprintf("exposure:%.4f:%.4f:%s:%d", p.Lat, p.Lon, date.UTC().Format("2006-01-02"), stepMinutes)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var sample domain.ExposureSample
			if err := json.Unmarshal(data, &sample); err == nil {
				metrics.CacheHits.WithLabelValues("exposure_daily").Inc()
				return sample, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("exposure_daily").Inc()
	}

	sample := s.computeDaily(ctx, p, date, stepMinutes)
	metrics.ExposureComputations.WithLabelValues("point").Inc()

	// Exposure for a fixed date is static; cache for a day.
	if s.cache != nil {
		if data, err := json.Marshal(sample); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 86400)
		}
	}

	return sample, nil
}

func (s *ExposureService) computeDaily(ctx context.Context, p domain.GeoPoint, date time.Time, stepMinutes int) domain.ExposureSample {
	sample := domain.ExposureSample{Point: p}
	if s.elev != nil {
		if elev, err := s.elev.ElevationAt(ctx, p.Lat, p.Lon); err == nil {
			sample.ElevationM = elev
		}
	}

	times, err := s.sun.TimesFor(p, date)
	if err != nil || times.Polar || !times.Sunrise.Before(times.Sunset) {
		// Empty sun-up interval: zero exposure, no first/last instants.
		return sample
	}

	step := time.Duration(stepMinutes) * time.Minute
	var sunMinutes float64
	for at := times.Sunrise; !at.After(times.Sunset); at = at.Add(step) {
		sunMinutes += float64(stepMinutes)
		instant := at
		if sample.FirstSun == nil {
			sample.FirstSun = &instant
		}
		sample.LastSun = &instant
	}

	sample.SunHours = sunMinutes / 60
	return sample
}

// Grid computes Daily for every lattice point, fanning out across points.
// Point order in the result matches grid order; points are independent, so
// a failed elevation enrichment on one never affects the others. Terrain
// height is informational only: no occlusion between points is modeled (a
// tall western point does not shade an eastern one).
func (s *ExposureService) Grid(ctx context.Context, grid *domain.Grid, date time.Time) ([]domain.ExposureSample, error) {
	if grid == nil || len(grid.Points) == 0 {
		return nil, fmt.Errorf("%w: empty grid", domain.ErrInvalidCoordinate)
	}

	samples := make([]domain.ExposureSample, len(grid.Points))
	sem := make(chan struct{}, maxExposureWorkers)
	var wg sync.WaitGroup

	for i, p := range grid.Points {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p domain.GeoPoint) {
			defer wg.Done()
			defer func() { <-sem }()
			sample, err := s.Daily(ctx, p, date, 0)
			if err != nil {
				sample = domain.ExposureSample{Point: p}
			}
			samples[i] = sample
		}(i, p)
	}
	wg.Wait()

	metrics.ExposureComputations.WithLabelValues("grid").Inc()
	return samples, nil
}
