package domain

import (
	"fmt"
	"math"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate is finite and within range.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidCoordinate)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %.4f out of [-90, 90]", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %.4f out of [-180, 180]", ErrInvalidCoordinate, p.Lon)
	}
	return nil
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Center returns the midpoint of the box.
func (b Bounds) Center() GeoPoint {
	return GeoPoint{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// Validate checks corner coordinates and that the box has positive extent.
func (b Bounds) Validate() error {
	if err := (GeoPoint{Lat: b.MinLat, Lon: b.MinLon}).Validate(); err != nil {
		return err
	}
	if err := (GeoPoint{Lat: b.MaxLat, Lon: b.MaxLon}).Validate(); err != nil {
		return err
	}
	if b.MaxLat <= b.MinLat || b.MaxLon <= b.MinLon {
		return fmt.Errorf("%w: bounds must have positive width and height", ErrInvalidCoordinate)
	}
	return nil
}

// Grid is a regular NxN lattice of points spanning a bounding box. It is the
// sampling basis for terrain shadows and area exposure analysis.
type Grid struct {
	Bounds Bounds     `json:"bounds"`
	N      int        `json:"n"`
	Points []GeoPoint `json:"points"`
}

// NewGrid builds an NxN lattice over the box, corners inclusive.
func NewGrid(b Bounds, n int) (*Grid, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: grid size must be >= 1, got %d", ErrInvalidCoordinate, n)
	}

	g := &Grid{Bounds: b, N: n, Points: make([]GeoPoint, 0, n*n)}
	if n == 1 {
		g.Points = append(g.Points, b.Center())
		return g, nil
	}

	latStep := (b.MaxLat - b.MinLat) / float64(n-1)
	lonStep := (b.MaxLon - b.MinLon) / float64(n-1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			g.Points = append(g.Points, GeoPoint{
				Lat: b.MinLat + float64(i)*latStep,
				Lon: b.MinLon + float64(j)*lonStep,
			})
		}
	}
	return g, nil
}
