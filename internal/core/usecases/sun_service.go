package usecases

import (
	"time"

	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/pkg/astro"
)

// SunService computes solar positions and day times. It is the validation
// boundary in front of the astro package: coordinates are checked here so
// out-of-range input fails fast instead of surfacing as NaN downstream.
type SunService struct{}

// NewSunService creates a new SunService.
func NewSunService() *SunService {
	return &SunService{}
}

// PositionAt returns the sun's altitude and azimuth for a point and instant.
// Deterministic and side-effect free. An altitude <= 0 is a valid result
// meaning the sun is below the horizon.
func (s *SunService) PositionAt(p domain.GeoPoint, at time.Time) (domain.SunPosition, error) {
	if err := p.Validate(); err != nil {
		return domain.SunPosition{}, err
	}
	alt, az := astro.Position(p.Lat, p.Lon, at)
	return domain.SunPosition{AltitudeDeg: alt, AzimuthDeg: az}, nil
}

// TimesFor returns sunrise, solar noon and sunset for the calendar day
// containing date. Polar day/night yields the zero-width sentinel interval
// (Polar set, all instants at UTC midnight) rather than an error.
func (s *SunService) TimesFor(p domain.GeoPoint, date time.Time) (domain.SunTimes, error) {
	if err := p.Validate(); err != nil {
		return domain.SunTimes{}, err
	}
	rise, noon, set, ok := astro.Times(p.Lat, p.Lon, date)
	return domain.SunTimes{
		Sunrise:   rise,
		SolarNoon: noon,
		Sunset:    set,
		Polar:     !ok,
	}, nil
}
