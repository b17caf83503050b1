package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// ToOrbRing converts points into a closed orb ring.
func ToOrbRing(points []GeoPoint) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p.Longitude, p.Latitude})
	}
	if len(points) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}

// ReferenceArea returns the spherical area of the ring in square meters as computed by orb.
// It is independent of the engine's triangulation and serves as a cross-check.
func ReferenceArea(points []GeoPoint) float64 {
	if len(points) < 3 {
		return 0
	}
	return math.Abs(orbgeo.Area(orb.Polygon{ToOrbRing(points)}))
}

// ToFeature wraps the traced parcel in a GeoJSON feature. Fewer than 3 points yield a LineString
// (or a Point for a single vertex) since no polygon can be formed yet.
func ToFeature(points []GeoPoint, properties map[string]any) *geojson.Feature {
	var g orb.Geometry
	switch {
	case len(points) >= 3:
		g = orb.Polygon{ToOrbRing(points)}
	case len(points) == 2:
		g = orb.LineString{
			{points[0].Longitude, points[0].Latitude},
			{points[1].Longitude, points[1].Latitude},
		}
	case len(points) == 1:
		g = orb.Point{points[0].Longitude, points[0].Latitude}
	default:
		g = orb.Collection{}
	}

	f := geojson.NewFeature(g)
	for k, v := range properties {
		f.Properties[k] = v
	}
	return f
}

// PointsFromFeature extracts the trace from a feature produced by ToFeature.
func PointsFromFeature(f *geojson.Feature) ([]GeoPoint, error) {
	var coords []orb.Point
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil, ErrInvalidCoordinates
		}
		coords = g[0]
		if len(coords) > 1 && coords[0].Equal(coords[len(coords)-1]) {
			coords = coords[:len(coords)-1]
		}
	case orb.LineString:
		coords = g
	case orb.Point:
		coords = []orb.Point{g}
	case orb.Collection:
		if len(g) != 0 {
			return nil, ErrInvalidCoordinates
		}
	default:
		return nil, ErrInvalidCoordinates
	}

	points := make([]GeoPoint, len(coords))
	for i, p := range coords {
		points[i] = GeoPoint{Latitude: p.Lat(), Longitude: p.Lon()}
	}
	return points, nil
}
