package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIntersect(t *testing.T) {
	l1 := [2]GeoPoint{
		{Latitude: 61.481094434555665, Longitude: 23.495311370637737},
		{Latitude: 61.48189587371329, Longitude: 23.497395796547806},
	}
	l2 := [2]GeoPoint{
		{Latitude: 61.48096408865421, Longitude: 23.497606083763515},
		{Latitude: 61.482200092117274, Longitude: 23.4948504390831},
	}
	l3 := [2]GeoPoint{
		{Latitude: 61.482200092117274, Longitude: 23.4948504390831},
		{Latitude: 61.47969452699654, Longitude: 23.494732574090232},
	}
	l5 := [2]GeoPoint{{Latitude: -1, Longitude: 1}, {Latitude: 1, Longitude: -1}}
	l6 := [2]GeoPoint{{Latitude: -1, Longitude: -1}, {Latitude: 1, Longitude: 1}}

	tests := []struct {
		name     string
		a, b     [2]GeoPoint
		expected bool
	}{
		{"crossing field edges", l1, l2, true},
		{"disjoint", l1, l3, false},
		{"shared endpoint only", l2, l3, false},
		{"crossing diagonals", l5, l6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsIntersect(tt.a[0], tt.a[1], tt.b[0], tt.b[1]))
			assert.Equal(t, tt.expected, IsIntersect(tt.b[0], tt.b[1], tt.a[0], tt.a[1]), "argument order")
			assert.Equal(t, tt.expected, IsIntersect(tt.a[1], tt.a[0], tt.b[0], tt.b[1]), "direction")
		})
	}
}

func TestIsIntersect_VerticalSegments(t *testing.T) {
	vertical := [2]GeoPoint{{Latitude: 0, Longitude: 0}, {Latitude: 2, Longitude: 0}}
	horizontal := [2]GeoPoint{{Latitude: 1, Longitude: -1}, {Latitude: 1, Longitude: 1}}
	otherVertical := [2]GeoPoint{{Latitude: 0, Longitude: 1}, {Latitude: 2, Longitude: 1}}

	assert.True(t, IsIntersect(vertical[0], vertical[1], horizontal[0], horizontal[1]))
	assert.False(t, IsIntersect(vertical[0], vertical[1], otherVertical[0], otherVertical[1]))
}

func TestIsIntersect_DegenerateCases(t *testing.T) {
	a := GeoPoint{Latitude: 0, Longitude: 0}
	b := GeoPoint{Latitude: 1, Longitude: 1}
	c := GeoPoint{Latitude: 2, Longitude: 2}
	d := GeoPoint{Latitude: 3, Longitude: 3}

	// Collinear overlap.
	assert.False(t, IsIntersect(a, c, b, d))
	// Parallel.
	assert.False(t, IsIntersect(a, b, GeoPoint{Latitude: 0, Longitude: 1}, GeoPoint{Latitude: 1, Longitude: 2}))
	// T junction: an endpoint lying on the other segment.
	assert.False(t, IsIntersect(a, c, b, GeoPoint{Latitude: 0, Longitude: 2}))
	// Zero-length segment.
	assert.False(t, IsIntersect(b, b, a, c))
}

func TestNewSegment_Bounds(t *testing.T) {
	s := NewSegment(GeoPoint{Latitude: 2, Longitude: 5}, GeoPoint{Latitude: -1, Longitude: 3})

	assert.Equal(t, 3.0, s.XMin)
	assert.Equal(t, 5.0, s.XMax)
	assert.Equal(t, -1.0, s.YMin)
	assert.Equal(t, 2.0, s.YMax)
}

func TestInTriangle(t *testing.T) {
	a := GeoPoint{Latitude: 0, Longitude: 0}
	b := GeoPoint{Latitude: 10, Longitude: 5}
	c := GeoPoint{Latitude: 0, Longitude: 10}

	tests := []struct {
		name     string
		p        GeoPoint
		expected bool
	}{
		{"inside", GeoPoint{Latitude: 8, Longitude: 5}, true},
		{"on edge", GeoPoint{Latitude: 0, Longitude: 5}, true},
		{"vertex", b, true},
		{"outside", GeoPoint{Latitude: 9, Longitude: 1}, false},
		{"below", GeoPoint{Latitude: -1, Longitude: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InTriangle(tt.p, a, b, c))
			assert.Equal(t, tt.expected, InTriangle(tt.p, c, b, a), "reversed winding")
		})
	}

	assert.False(t, InTriangle(a, a, GeoPoint{Latitude: 1, Longitude: 1}, GeoPoint{Latitude: 2, Longitude: 2}))
}
