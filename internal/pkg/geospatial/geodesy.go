// Package geospatial provides great-circle helpers on a spherical Earth.
package geospatial

import "math"

// EarthRadiusM is the mean Earth radius used for all projections.
const EarthRadiusM = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// Destination returns the point reached by travelling distanceM meters from
// (lat, lon) along the given initial bearing (degrees clockwise from north).
// Standard great-circle forward projection.
func Destination(lat, lon, distanceM, bearingDeg float64) (destLat, destLon float64) {
	angular := distanceM / EarthRadiusM
	bearing := toRad(bearingDeg)
	latRad := toRad(lat)
	lonRad := toRad(lon)

	destLatRad := math.Asin(math.Sin(latRad)*math.Cos(angular) +
		math.Cos(latRad)*math.Sin(angular)*math.Cos(bearing))
	destLonRad := lonRad + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(latRad),
		math.Cos(angular)-math.Sin(latRad)*math.Sin(destLatRad),
	)

	destLon = math.Mod(toDeg(destLonRad)+540, 360) - 180 // normalise to [-180, 180)
	return toDeg(destLatRad), destLon
}

// InitialBearing returns the starting bearing in degrees [0, 360) of the
// great circle from the first point to the second.
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	dLon := toRad(lon2 - lon1)
	y := math.Sin(dLon) * math.Cos(toRad(lat2))
	x := math.Cos(toRad(lat1))*math.Sin(toRad(lat2)) -
		math.Sin(toRad(lat1))*math.Cos(toRad(lat2))*math.Cos(dLon)

	bearing := math.Mod(toDeg(math.Atan2(y, x))+360, 360)
	return bearing
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
