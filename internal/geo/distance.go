package geo

import "math"

const earthRadiusMeters = 6_371_000

// PlanarDist2 returns the squared Euclidean distance between two points,
// treating latitude and longitude degrees as a flat plane.
//
// This is an approximation that only ranks correctly at city scale: it
// ignores longitude convergence toward the poles and the curvature of the
// earth. It is used for nearest-station ranking and must not be swapped for
// a geodesic distance without revisiting every caller's ordering.
func PlanarDist2(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return dLat*dLat + dLon*dLon
}

// Haversine returns the great-circle distance in meters between two lat/lon points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// MetersToKilometers converts meters to kilometers.
func MetersToKilometers(m float64) float64 {
	return m / 1000
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
