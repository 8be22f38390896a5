package utils

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine
	// formula (spherical approximation of WGS84).
	EarthRadiusMeters = 6371000.0

	// HalfCircumferenceMeters is the maximum possible great-circle
	// distance between two points on the sphere.
	HalfCircumferenceMeters = math.Pi * EarthRadiusMeters
)

// HaversineMeters returns the great-circle distance between two points in
// meters. This is the geodesic metric used for nearest-neighbor ranking;
// planar degree math is only acceptable for bounding-box membership.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}
