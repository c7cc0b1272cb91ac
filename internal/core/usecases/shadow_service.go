package usecases

import (
	"math"
	"time"

	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/pkg/geospatial"
)

// ShadowService projects cast shadows for assumed vertical features.
type ShadowService struct {
	sun *SunService

	capM          float64 // hard cap on shadow length; near-horizon sun would otherwise produce unbounded values
	markerHeightM float64 // assumed height for discrete marker shadows
}

// NewShadowService creates a ShadowService. capM bounds the projected length
// (the legacy implementations capped at 1000 m) and markerHeightM is the
// assumed object height for marker shadows.
func NewShadowService(sun *SunService, capM, markerHeightM float64) *ShadowService {
	return &ShadowService{sun: sun, capM: capM, markerHeightM: markerHeightM}
}

// CastingLength returns the ground length of the shadow cast by a vertical
// feature of heightM under a sun at altitudeDeg. Zero at or below the horizon
// (altitude exactly 0 counts as below, keeping tan() out of its singularity);
// otherwise h/tan(alt), clamped to the configured cap.
func (s *ShadowService) CastingLength(altitudeDeg, heightM float64) float64 {
	if altitudeDeg <= 0 || heightM <= 0 {
		return 0
	}
	length := heightM / math.Tan(altitudeDeg*math.Pi/180)
	if length > s.capM {
		return s.capM
	}
	return length
}

// Project returns the point lengthM meters from origin along bearingDeg.
func (s *ShadowService) Project(origin domain.GeoPoint, lengthM, bearingDeg float64) domain.GeoPoint {
	lat, lon := geospatial.Destination(origin.Lat, origin.Lon, lengthM, bearingDeg)
	return domain.GeoPoint{Lat: lat, Lon: lon}
}

// Shadow builds the segment cast by a feature of heightM at origin under the
// given sun position. The second return is false when there is no shadow
// (sun at or below the horizon). The shadow falls opposite the sun: bearing
// is the azimuth rotated 180 degrees.
func (s *ShadowService) Shadow(origin domain.GeoPoint, sun domain.SunPosition, heightM float64) (domain.ShadowSegment, bool) {
	length := s.CastingLength(sun.AltitudeDeg, heightM)
	if length <= 0 {
		return domain.ShadowSegment{}, false
	}

	bearing := math.Mod(sun.AzimuthDeg+180, 360)
	return domain.ShadowSegment{
		Origin:         origin,
		Tip:            s.Project(origin, length, bearing),
		CastingHeightM: heightM,
		LengthM:        length,
		Opacity:        shadowOpacity(sun.AltitudeDeg),
	}, true
}

// MarkerShadow casts the shadow of a discrete marker using the configured
// assumed height and the sun position at the marker's own location.
func (s *ShadowService) MarkerShadow(p domain.GeoPoint, at time.Time) (domain.ShadowSegment, bool, error) {
	sun, err := s.sun.PositionAt(p, at)
	if err != nil {
		return domain.ShadowSegment{}, false, err
	}
	seg, ok := s.Shadow(p, sun, s.markerHeightM)
	return seg, ok, nil
}

// shadowOpacity maps altitude to a rendering weight: a low sun casts a long,
// prominent shadow, a high sun a faint one. Presentation hint only.
func shadowOpacity(altitudeDeg float64) float64 {
	o := 0.7 - 0.5*(altitudeDeg/90)
	if o < 0.2 {
		o = 0.2
	}
	return o
}
