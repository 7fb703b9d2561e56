package geo

import "math"

const earthRadiusMeters = 6371000

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineDistance returns the great-circle distance between two
// coordinates in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// WithinRadius reports whether (lat, lng) lies within radiusMeters of center.
func WithinRadius(lat, lng float64, center Point, radiusMeters float64) bool {
	return HaversineDistance(lat, lng, center.Lat, center.Lng) <= radiusMeters
}

// PointInPolygon runs a ray cast against the polygon vertices.
// Polygons with fewer than 3 points contain nothing.
func PointInPolygon(lat, lng float64, points []Point) bool {
	n := len(points)
	if n < 3 {
		return false
	}

	x, y := lng, lat
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := points[i].Lng, points[i].Lat
		xj, yj := points[j].Lng, points[j].Lat

		denom := yj - yi
		if denom == 0 {
			denom = 1e-12
		}
		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/denom+xi) {
			inside = !inside
		}
		j = i
	}
	return inside
}
