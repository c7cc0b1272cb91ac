package astro

import (
	"math"
	"testing"
	"time"
)

// Toulouse, used throughout: the service's home turf.
const (
	toulouseLat = 43.6047
	toulouseLon = 1.4442
)

func TestPosition_Ranges(t *testing.T) {
	instants := []time.Time{
		time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 21, 3, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 18, 15, 0, 0, time.UTC),
		time.Date(1999, 8, 11, 10, 0, 0, 0, time.UTC),
	}
	points := [][2]float64{
		{toulouseLat, toulouseLon},
		{0, 0},
		{-78.5, 166.9},
		{89.9, -135.0},
	}

	for _, at := range instants {
		for _, p := range points {
			alt, az := Position(p[0], p[1], at)
			if alt < -90 || alt > 90 {
				t.Errorf("altitude %.3f out of range at %v (%v)", alt, at, p)
			}
			if az < 0 || az >= 360 {
				t.Errorf("azimuth %.3f out of [0,360) at %v (%v)", az, at, p)
			}
			if math.IsNaN(alt) || math.IsNaN(az) {
				t.Errorf("NaN position at %v (%v)", at, p)
			}
		}
	}
}

func TestPosition_NoonIsDailyMaximum(t *testing.T) {
	date := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	_, noon, _, ok := Times(toulouseLat, toulouseLon, date)
	if !ok {
		t.Fatal("expected regular sun times for Toulouse on the solstice")
	}

	noonAlt, _ := Position(toulouseLat, toulouseLon, noon)

	// No other instant of that day should beat solar noon.
	for m := 0; m < 24*60; m += 10 {
		at := date.Add(time.Duration(m) * time.Minute)
		alt, _ := Position(toulouseLat, toulouseLon, at)
		if alt > noonAlt+0.5 {
			t.Fatalf("altitude %.3f at %v exceeds solar-noon altitude %.3f", alt, at, noonAlt)
		}
	}

	// Summer solstice at 43.6N: noon sun roughly 90 - 43.6 + 23.4 = 69.8 degrees.
	if noonAlt < 68 || noonAlt > 72 {
		t.Errorf("solstice noon altitude = %.2f, want ~69.8", noonAlt)
	}
}

func TestPosition_MidnightBelowHorizon(t *testing.T) {
	alt, _ := Position(toulouseLat, toulouseLon, time.Date(2024, 6, 21, 0, 30, 0, 0, time.UTC))
	if alt >= 0 {
		t.Errorf("expected sun below horizon at night, got altitude %.2f", alt)
	}
}

func TestTimes_Ordering(t *testing.T) {
	rise, noon, set, ok := Times(toulouseLat, toulouseLon, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected regular sun times")
	}
	if !rise.Before(noon) || !noon.Before(set) {
		t.Errorf("expected rise < noon < set, got %v / %v / %v", rise, noon, set)
	}
	// A long summer day at this latitude.
	if day := set.Sub(rise); day < 15*time.Hour {
		t.Errorf("solstice day length = %v, want > 15h", day)
	}
}

func TestTimes_PolarNightSentinel(t *testing.T) {
	// Longyearbyen in late December: the sun never rises.
	rise, noon, set, ok := Times(78.22, 15.65, time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC))
	if ok {
		t.Fatal("expected polar sentinel")
	}
	midnight := time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)
	if !rise.Equal(midnight) || !noon.Equal(midnight) || !set.Equal(midnight) {
		t.Errorf("polar sentinel should collapse to UTC midnight, got %v / %v / %v", rise, noon, set)
	}
}

func TestJulianDay_J2000(t *testing.T) {
	// 2000-01-01 12:00 UTC is JD 2451545.0 by definition.
	jd := JulianDay(time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC))
	if math.Abs(jd-2451545.0) > 1e-6 {
		t.Errorf("JulianDay(J2000) = %f, want 2451545.0", jd)
	}
}
