package geo

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ParsePolyline parses a JSON array of coordinates into an ordered list of points.
// Input format: "[[long1,lat1],[long2,lat2],...]"
func ParsePolyline(input string) ([]GeoPoint, error) {
	var coords [][]float64
	if err := json.Unmarshal([]byte(input), &coords); err != nil {
		return nil, fmt.Errorf("failed to parse polyline JSON: %w", err)
	}

	points := make([]GeoPoint, len(coords))
	for i, coord := range coords {
		if len(coord) < 2 {
			return nil, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		points[i] = GeoPoint{Latitude: coord[1], Longitude: coord[0]}
	}

	return points, nil
}

// ToLineString converts points into an EPSG:4326 LineString (X=longitude, Y=latitude).
// When closed is set the first point is repeated at the end.
func ToLineString(points []GeoPoint, closed bool) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, nil
	}

	flatCoords := make([]float64, 0, (len(points)+1)*2)
	for _, p := range points {
		flatCoords = append(flatCoords, p.Longitude, p.Latitude)
	}
	if closed {
		flatCoords = append(flatCoords, points[0].Longitude, points[0].Latitude)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.LineString{}, fmt.Errorf("failed to create LineString: %w", err)
	}
	return ls, nil
}

// FromLineString is the inverse of ToLineString. A closing point equal to the first one is dropped.
func FromLineString(ls geom.LineString) []GeoPoint {
	seq := ls.Coordinates()
	n := seq.Length()
	if n == 0 {
		return nil
	}
	first, last := seq.Get(0).XY, seq.Get(n-1).XY
	if n > 1 && first == last {
		n--
	}

	points := make([]GeoPoint, n)
	for i := 0; i < n; i++ {
		xy := seq.Get(i).XY
		points[i] = GeoPoint{Latitude: xy.Y, Longitude: xy.X}
	}
	return points
}

// RingWKT returns the closed ring of the points as WKT, or an empty string for fewer than 3 points.
func RingWKT(points []GeoPoint) (string, error) {
	if len(points) < 3 {
		return "", nil
	}
	ls, err := ToLineString(points, true)
	if err != nil {
		return "", err
	}
	return ls.AsText(), nil
}

// PointsFromWKB decodes a WKB LineString produced by ToLineString.
func PointsFromWKB(wkb []byte) ([]GeoPoint, error) {
	g, err := geom.UnmarshalWKB(wkb)
	if err != nil {
		return nil, fmt.Errorf("failed to decode WKB: %w", err)
	}
	ls, ok := g.AsLineString()
	if !ok {
		return nil, fmt.Errorf("expected LineString geometry, got %s", g.Type())
	}
	return FromLineString(ls), nil
}

// RingWKB returns the closed ring of the points as WKB, or nil for fewer than 3 points.
func RingWKB(points []GeoPoint) ([]byte, error) {
	if len(points) < 3 {
		return nil, nil
	}
	ls, err := ToLineString(points, true)
	if err != nil {
		return nil, err
	}
	return ls.AsBinary(), nil
}
