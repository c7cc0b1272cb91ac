// Package astro implements low-precision solar astronomy: apparent sun
// position (altitude/azimuth) from Julian day and ecliptic coordinates, and
// sunrise/sunset/solar-noon lookups. Accuracy is better than 0.5 degrees for
// dates in the practical Gregorian range, which is plenty for shadow casting.
package astro

import (
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

const degToRad = math.Pi / 180.0

// Position returns the sun's altitude and azimuth in degrees for the given
// coordinates and instant. Altitude is in [-90, 90] (negative below horizon),
// azimuth in [0, 360) clockwise from true north. Pure function, no I/O.
func Position(lat, lon float64, at time.Time) (altitudeDeg, azimuthDeg float64) {
	n := JulianDay(at.UTC()) - 2451545.0 // days since J2000.0

	// Mean longitude and mean anomaly of the sun.
	meanLon := math.Mod(280.460+0.9856474*n, 360.0)
	meanAnom := math.Mod(357.528+0.9856003*n, 360.0) * degToRad

	// Ecliptic longitude and obliquity.
	eclipticLon := (meanLon + 1.915*math.Sin(meanAnom) + 0.020*math.Sin(2*meanAnom)) * degToRad
	obliquity := (23.439 - 0.0000004*n) * degToRad

	// Equatorial coordinates.
	rightAsc := math.Atan2(math.Cos(obliquity)*math.Sin(eclipticLon), math.Cos(eclipticLon))
	declination := math.Asin(math.Sin(obliquity) * math.Sin(eclipticLon))

	// Local hour angle from sidereal time.
	gmst := math.Mod(280.460+360.9856474*n, 360.0)
	hourAngle := math.Mod(gmst+lon, 360.0)*degToRad - rightAsc

	latRad := lat * degToRad
	sinAlt := math.Sin(latRad)*math.Sin(declination) +
		math.Cos(latRad)*math.Cos(declination)*math.Cos(hourAngle)
	sinAlt = clamp(sinAlt, -1, 1)
	altitude := math.Asin(sinAlt)

	cosAz := (math.Sin(declination) - math.Sin(latRad)*sinAlt) /
		(math.Cos(latRad) * math.Cos(altitude))
	azimuth := math.Acos(clamp(cosAz, -1, 1)) / degToRad
	if math.Sin(hourAngle) > 0 {
		azimuth = 360.0 - azimuth
	}
	azimuth = math.Mod(azimuth, 360.0)
	if azimuth < 0 {
		azimuth += 360.0
	}

	return altitude / degToRad, azimuth
}

// Times returns sunrise, solar noon and sunset (UTC) for the calendar day
// containing date at the given coordinates. On polar night or polar day the
// second return value is false and all three instants collapse to UTC
// midnight of that date: a zero-width interval that callers must read as
// "no sun-up window", never as an error.
func Times(lat, lon float64, date time.Time) (rise, noon, set time.Time, ok bool) {
	y, m, d := date.UTC().Date()
	rise, set = sunrise.SunriseSunset(lat, lon, y, m, d)
	if rise.IsZero() || set.IsZero() {
		midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return midnight, midnight, midnight, false
	}
	// Apparent solar noon: midpoint of the sun-up interval.
	noon = rise.Add(set.Sub(rise) / 2)
	return rise, noon, set, true
}

// JulianDay converts an instant to the astronomical Julian day number.
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	year := t.Year()
	month := int(t.Month())
	if month <= 2 {
		year--
		month += 12
	}

	a := year / 100
	b := 2 - a + a/4

	jd := float64(int(365.25*float64(year+4716))) +
		float64(int(30.6001*float64(month+1))) +
		float64(t.Day()) + float64(b) - 1524.5

	dayFraction := (float64(t.Hour()) +
		float64(t.Minute())/60.0 +
		float64(t.Second())/3600.0) / 24.0

	return jd + dayFraction
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
