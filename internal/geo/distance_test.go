package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	raattiStart = GeoPoint{Latitude: 65.02034409496977, Longitude: 25.46509875665957}
	raatti100m  = GeoPoint{Latitude: 65.01944685934953, Longitude: 25.465002628077194}
)

func TestLocalEarthRadius(t *testing.T) {
	assert.InDelta(t, 6360569.0, LocalEarthRadius(65.1), 1.0)
	assert.InDelta(t, EquatorialRadius, LocalEarthRadius(0), 1e-6)
	assert.InDelta(t, PolarRadius, LocalEarthRadius(90), 1e-6)
	assert.InDelta(t, LocalEarthRadius(-45), LocalEarthRadius(45), 1e-6)
}

func TestDistanceBetween_HundredMeters(t *testing.T) {
	assert.InDelta(t, 100.0, DistanceBetween(raattiStart, raatti100m), 1.0)
}

func TestDistanceBetween_Kilometer(t *testing.T) {
	p1 := GeoPoint{Latitude: 65.06344439716655, Longitude: 25.417929700451506}
	p2 := GeoPoint{Latitude: 65.0669438971005, Longitude: 25.430291262192128}

	assert.InDelta(t, 697.0, DistanceBetween(p1, p2), 0.5)
}

func TestDistanceBetween_Symmetric(t *testing.T) {
	pairs := [][2]GeoPoint{
		{raattiStart, raatti100m},
		{{Latitude: 61.495466, Longitude: 23.231302}, {Latitude: 61.495809, Longitude: 23.238570}},
		{{Latitude: -33.9, Longitude: 18.4}, {Latitude: -33.91, Longitude: 18.42}},
	}

	// The radius is taken at the first point's latitude, so the two directions differ by the
	// relative change of the radius between the points.
	for _, p := range pairs {
		assert.InEpsilon(t, DistanceBetween(p[0], p[1]), DistanceBetween(p[1], p[0]), 1e-5)
	}
}

func TestDistanceBetween_SamePoint(t *testing.T) {
	assert.Equal(t, 0.0, DistanceBetween(raattiStart, raattiStart))
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name     string
		from, to GeoPoint
		expected float64
	}{
		{"north", GeoPoint{0, 0}, GeoPoint{Latitude: 1, Longitude: 0}, 0},
		{"east", GeoPoint{0, 0}, GeoPoint{Latitude: 0, Longitude: 1}, 90},
		{"south", GeoPoint{0, 0}, GeoPoint{Latitude: -1, Longitude: 0}, 180},
		{"west", GeoPoint{0, 0}, GeoPoint{Latitude: 0, Longitude: -1}, 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Bearing(tt.from, tt.to), 1e-9)
		})
	}
}

func TestBearing_TrackIsRoughlySouth(t *testing.T) {
	b := Bearing(raattiStart, raatti100m)
	assert.Greater(t, b, 180.0)
	assert.Less(t, b, 190.0)
}

func TestPerimeter(t *testing.T) {
	assert.Equal(t, 0.0, Perimeter(nil, true))
	assert.Equal(t, 0.0, Perimeter([]GeoPoint{raattiStart}, true))

	open := Perimeter([]GeoPoint{raattiStart, raatti100m}, false)
	assert.InDelta(t, DistanceBetween(raattiStart, raatti100m), open, 1e-9)

	// Two points never get a closing edge.
	assert.Equal(t, open, Perimeter([]GeoPoint{raattiStart, raatti100m}, true))

	square := []GeoPoint{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.001},
		{Latitude: 0.001, Longitude: 0.001},
		{Latitude: 0.001, Longitude: 0},
	}
	assert.InDelta(t, 4*111.3, Perimeter(square, true), 1.0)
	assert.InDelta(t, 3*111.3, Perimeter(square, false), 1.0)
}
