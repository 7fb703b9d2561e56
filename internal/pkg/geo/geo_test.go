package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Jakarta city center and the national monument, roughly 600m apart.
var (
	monas   = Point{Lat: -6.1754, Lng: 106.8272}
	cityHal = Point{Lat: -6.1805, Lng: 106.8284}
)

func TestHaversineDistance(t *testing.T) {
	d := HaversineDistance(monas.Lat, monas.Lng, cityHal.Lat, cityHal.Lng)
	assert.InDelta(t, 580, d, 50)

	assert.Zero(t, HaversineDistance(monas.Lat, monas.Lng, monas.Lat, monas.Lng))
}

func TestWithinRadius(t *testing.T) {
	assert.True(t, WithinRadius(cityHal.Lat, cityHal.Lng, monas, 1000))
	assert.False(t, WithinRadius(cityHal.Lat, cityHal.Lng, monas, 100))
	assert.True(t, WithinRadius(monas.Lat, monas.Lng, monas, 0))
}

func TestPointInPolygon(t *testing.T) {
	square := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 10, Lng: 10},
		{Lat: 10, Lng: 0},
	}

	assert.True(t, PointInPolygon(5, 5, square))
	assert.False(t, PointInPolygon(15, 5, square))
	assert.False(t, PointInPolygon(5, -1, square))
}

func TestPointInPolygonDegenerate(t *testing.T) {
	assert.False(t, PointInPolygon(5, 5, nil))
	assert.False(t, PointInPolygon(5, 5, []Point{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 10}}))
}
