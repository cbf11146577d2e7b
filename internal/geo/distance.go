package geo

import "math"

const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two
// latitude/longitude pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1 = lat1 * (math.Pi / 180)
	lat2 = lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// BoundingBox returns a latitude/longitude box that fully contains the
// circle of the given radius (meters) around the center point. Used as a
// cheap SQL prefilter before the exact haversine check.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, maxLat, minLon, maxLon float64) {
	latDelta := radiusMeters / earthRadiusMeters * (180 / math.Pi)
	lonDelta := latDelta
	if cos := math.Cos(lat * math.Pi / 180); cos > 1e-6 {
		lonDelta = latDelta / cos
	}
	return lat - latDelta, lat + latDelta, lon - lonDelta, lon + lonDelta
}
