package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Toulouse to Montpellier, roughly 196 km.
	d := Haversine(43.6047, 1.4442, 43.6108, 3.8767)
	if d < 190000 || d > 202000 {
		t.Errorf("Toulouse-Montpellier = %.0f m, want ~196 km", d)
	}
}

func TestDestination_RoundTrip(t *testing.T) {
	cases := []struct {
		lat, lon, dist, bearing float64
	}{
		{43.6047, 1.4442, 100, 180},
		{43.6047, 1.4442, 1000, 42.5},
		{0, 0, 500, 90},
		{-33.9, 151.2, 2500, 310},
	}

	for _, c := range cases {
		destLat, destLon := Destination(c.lat, c.lon, c.dist, c.bearing)

		gotDist := Haversine(c.lat, c.lon, destLat, destLon)
		if math.Abs(gotDist-c.dist) > 0.01*c.dist+0.5 {
			t.Errorf("Destination(%v) round-trip distance = %.2f, want %.2f", c, gotDist, c.dist)
		}

		gotBearing := InitialBearing(c.lat, c.lon, destLat, destLon)
		diff := math.Abs(gotBearing - c.bearing)
		if diff > 180 {
			diff = 360 - diff
		}
		if diff > 0.5 {
			t.Errorf("Destination(%v) round-trip bearing = %.2f, want %.2f", c, gotBearing, c.bearing)
		}
	}
}

func TestDestination_SouthShrinksLatitude(t *testing.T) {
	lat, lon := Destination(43.6047, 1.4442, 1000, 180)
	if lat >= 43.6047 {
		t.Errorf("heading south should decrease latitude, got %.5f", lat)
	}
	if math.Abs(lon-1.4442) > 1e-6 {
		t.Errorf("heading due south should keep longitude, got %.5f", lon)
	}
}

func TestInitialBearing_Range(t *testing.T) {
	b := InitialBearing(43.6, 1.44, 48.85, 2.35)
	if b < 0 || b >= 360 {
		t.Errorf("bearing %.2f out of [0, 360)", b)
	}
	// Paris is roughly north-northeast of Toulouse.
	if b < 0 || b > 30 {
		t.Errorf("Toulouse->Paris bearing = %.1f, want north-northeast", b)
	}
}

func TestBoundingBox_ContainsCenter(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(43.6, 1.44, 500)
	if minLat >= 43.6 || maxLat <= 43.6 || minLon >= 1.44 || maxLon <= 1.44 {
		t.Error("bounding box should contain its center")
	}
}
