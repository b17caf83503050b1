package area

import (
	"math"

	"github.com/fieldmeasure/fieldpatch/internal/geo"
)

// ContainerPadding is added around the bounding box in degrees (~1 cm) so that rays cast to the
// container edge always end strictly outside the polygon.
const ContainerPadding = 1e-7

// GenerateContainer returns the corners of the padded axis-aligned bounding box of the points in
// the order top-left, bottom-left, bottom-right, top-right. The zero container is returned for
// no points.
func GenerateContainer(points []geo.GeoPoint) [4]geo.GeoPoint {
	if len(points) == 0 {
		return [4]geo.GeoPoint{}
	}

	minLat, maxLat := points[0].Latitude, points[0].Latitude
	minLon, maxLon := points[0].Longitude, points[0].Longitude
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.Latitude)
		maxLat = math.Max(maxLat, p.Latitude)
		minLon = math.Min(minLon, p.Longitude)
		maxLon = math.Max(maxLon, p.Longitude)
	}
	minLat, maxLat = minLat-ContainerPadding, maxLat+ContainerPadding
	minLon, maxLon = minLon-ContainerPadding, maxLon+ContainerPadding

	return [4]geo.GeoPoint{
		{Latitude: maxLat, Longitude: minLon},
		{Latitude: minLat, Longitude: minLon},
		{Latitude: minLat, Longitude: maxLon},
		{Latitude: maxLat, Longitude: maxLon},
	}
}

// centroid is the planar mean of the points.
func centroid(points ...geo.GeoPoint) geo.GeoPoint {
	var c geo.GeoPoint
	for _, p := range points {
		c.Latitude += p.Latitude / float64(len(points))
		c.Longitude += p.Longitude / float64(len(points))
	}
	return c
}

// pointInArea casts a ray from p east to the container edge and counts crossings with the
// polygon's edges, closing edge included. An edge counts when it straddles the ray's latitude
// half-open ([low, high)), so a ray through a shared vertex is counted once.
func pointInArea(p geo.GeoPoint, area []geo.GeoPoint) bool {
	n := len(area)
	if n < 3 {
		return false
	}
	rayEnd := GenerateContainer(area)[3].Longitude
	if p.Longitude > rayEnd {
		return false
	}

	inside := false
	for i := 0; i < n; i++ {
		a, b := area[i], area[(i+1)%n]
		if (a.Latitude > p.Latitude) == (b.Latitude > p.Latitude) {
			continue
		}
		x := a.Longitude + (p.Latitude-a.Latitude)*(b.Longitude-a.Longitude)/(b.Latitude-a.Latitude)
		if x > p.Longitude && x <= rayEnd {
			inside = !inside
		}
	}
	return inside
}

// TriangleIsInsideArea reports whether the triangle's centroid lies inside the area. The area is
// assumed to be a simple polygon and the triangle to be either fully inside or fully outside it.
func TriangleIsInsideArea(triangle [3]geo.GeoPoint, area []geo.GeoPoint) bool {
	return pointInArea(centroid(triangle[:]...), area)
}
