package domain

import (
	"errors"
	"time"
)

// ErrInvalidCoordinate is returned when a caller passes out-of-range or
// non-finite geographic input. It is detected at usecase entry points so that
// NaNs never propagate through the trigonometric chain.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// SunPosition is the sun's position in the sky for one point and instant.
// Altitude <= 0 means the sun is below the horizon; that is a defined state
// ("no shadow, no direct exposure"), not an error.
type SunPosition struct {
	AltitudeDeg float64 `json:"altitude_deg"` // [-90, 90]
	AzimuthDeg  float64 `json:"azimuth_deg"`  // [0, 360) from true north
}

// AboveHorizon reports whether the sun casts direct light. Altitude exactly 0
// counts as below horizon to keep tan() out of its singularity.
func (s SunPosition) AboveHorizon() bool {
	return s.AltitudeDeg > 0
}

// SunTimes holds the key instants of one calendar day at one point.
// On polar day or polar night Polar is true and all three instants collapse
// to UTC midnight of the date: a zero-width sun-up interval that downstream
// consumers must treat as zero exposure.
type SunTimes struct {
	Sunrise   time.Time `json:"sunrise"`
	SolarNoon time.Time `json:"solar_noon"`
	Sunset    time.Time `json:"sunset"`
	Polar     bool      `json:"polar"`
}

// ShadowSegment is the projected shadow of an assumed vertical feature.
// Length is always derived from altitude and casting height, never stored
// independently.
type ShadowSegment struct {
	Origin         GeoPoint `json:"origin"`
	Tip            GeoPoint `json:"tip"`
	CastingHeightM float64  `json:"casting_height_m"`
	LengthM        float64  `json:"length_m"`
	// ElevationM is the terrain height sampled at the origin, for rendering
	// context only. It does not lengthen or occlude the shadow.
	ElevationM float64 `json:"elevation_m"`
	// Opacity is a presentation hint in (0, 1]: lower sun, heavier shadow.
	Opacity float64 `json:"opacity"`
}

// ElevationSample pairs a point with its terrain height.
type ElevationSample struct {
	Point      GeoPoint `json:"point"`
	ElevationM float64  `json:"elevation_m"`
}

// ExposureSample is one point's direct-sun total for one calendar day,
// sampled at a fixed interval between sunrise and sunset. The sum is a coarse
// Riemann approximation: smaller steps buy accuracy at linear cost.
type ExposureSample struct {
	Point      GeoPoint   `json:"point"`
	ElevationM float64    `json:"elevation_m"`
	SunHours   float64    `json:"sun_hours"`
	FirstSun   *time.Time `json:"first_sun,omitempty"`
	LastSun    *time.Time `json:"last_sun,omitempty"`
}
