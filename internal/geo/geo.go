package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Points are kept in EPSG:4326 degrees while a parcel is traced. Anything that leaves the process
// (database rows, exports) is converted here, either to EPSG:3857 for storage or to WKT/GeoJSON.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PointTolerance is the default tolerance in degrees used by GeoPoint.Equal.
const PointTolerance = 1e-9

// GeoPoint is a WGS84 latitude/longitude pair in degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Vertex is a point removed from a trace, labelled with its 1-based position in the
// trace at the moment it was removed.
type Vertex struct {
	GeoPoint
	Ordinal int `json:"ordinal"`
}

// Equal reports whether both coordinates are within tol degrees of each other.
func (p GeoPoint) Equal(other GeoPoint, tol float64) bool {
	return math.Abs(p.Latitude-other.Latitude) <= tol &&
		math.Abs(p.Longitude-other.Longitude) <= tol
}

// PointFromString parses a string in the format "long,lat" into a GeoPoint.
// A trailing elevation component is accepted and ignored.
func PointFromString(coords string) (GeoPoint, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 {
		return GeoPoint{}, ErrInvalidCoordinates
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return GeoPoint{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return GeoPoint{}, ErrInvalidCoordinates
	}
	if len(coordsSplit) > 2 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[2]), 64); err != nil {
			return GeoPoint{}, ErrInvalidCoordinates
		}
	}
	return GeoPoint{Latitude: lat, Longitude: long}, nil
}

// ToWebMercator converts a point from EPSG:4326 to EPSG:3857 (x, y in meters).
func ToWebMercator(p GeoPoint) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(p.Longitude, p.Latitude, 0)
	return x, y
}

// ToMercatorLineString builds a closed EPSG:3857 ring from the points. An empty LineString is
// returned for fewer than 3 points.
func ToMercatorLineString(points []GeoPoint) (geom.LineString, error) {
	if len(points) < 3 {
		return geom.LineString{}, nil
	}
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)

	flat := make([]float64, 0, (len(points)+1)*2)
	for _, p := range points {
		x, y, _ := f(p.Longitude, p.Latitude, 0)
		flat = append(flat, x, y)
	}
	flat = append(flat, flat[0], flat[1])
	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}, fmt.Errorf("failed to create mercator LineString: %w", err)
	}
	return ls, nil
}
