package geo

import "math"

// Segment is a straight line between two points in the planar (X=longitude, Y=latitude) plane.
// It is only meaningful for small extents and is used for topology tests, never for distances.
type Segment struct {
	A, B       GeoPoint
	XMin, XMax float64
	YMin, YMax float64
}

// NewSegment builds a segment and its bounding box.
func NewSegment(a, b GeoPoint) Segment {
	return Segment{
		A:    a,
		B:    b,
		XMin: math.Min(a.Longitude, b.Longitude),
		XMax: math.Max(a.Longitude, b.Longitude),
		YMin: math.Min(a.Latitude, b.Latitude),
		YMax: math.Max(a.Latitude, b.Latitude),
	}
}

// orientation is the z component of (b-a) x (c-a). Positive when c lies left of a->b.
func orientation(a, b, c GeoPoint) float64 {
	return (b.Longitude-a.Longitude)*(c.Latitude-a.Latitude) -
		(b.Latitude-a.Latitude)*(c.Longitude-a.Longitude)
}

func oppositeSigns(x, y float64) bool {
	return (x > 0 && y < 0) || (x < 0 && y > 0)
}

// Intersects reports whether the two segments properly cross each other. Touching at an endpoint,
// collinear overlap and parallel segments are not intersections, so consecutive polygon edges
// sharing a vertex never intersect.
func (s Segment) Intersects(o Segment) bool {
	if s.XMax < o.XMin || o.XMax < s.XMin || s.YMax < o.YMin || o.YMax < s.YMin {
		return false
	}
	d1 := orientation(o.A, o.B, s.A)
	d2 := orientation(o.A, o.B, s.B)
	d3 := orientation(s.A, s.B, o.A)
	d4 := orientation(s.A, s.B, o.B)
	return oppositeSigns(d1, d2) && oppositeSigns(d3, d4)
}

// IsIntersect returns true if the segments a1->a2 and b1->b2 properly cross.
func IsIntersect(a1, a2, b1, b2 GeoPoint) bool {
	return NewSegment(a1, a2).Intersects(NewSegment(b1, b2))
}

// InTriangle reports whether p lies inside the triangle abc or on its boundary, in either winding.
// A degenerate triangle contains nothing.
func InTriangle(p, a, b, c GeoPoint) bool {
	if orientation(a, b, c) == 0 {
		return false
	}
	d1 := orientation(a, b, p)
	d2 := orientation(b, c, p)
	d3 := orientation(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
