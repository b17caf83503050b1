package area

import (
	"math"

	"github.com/fieldmeasure/fieldpatch/internal/geo"
)

// TriangleArea returns the area in m² of the triangle abc using Heron's formula on geodesic side
// lengths. Near-collinear points can push the radicand slightly below zero; it is clamped so the
// result is 0 instead of NaN.
func TriangleArea(a, b, c geo.GeoPoint) float64 {
	d1 := geo.DistanceBetween(a, b)
	d2 := geo.DistanceBetween(b, c)
	d3 := geo.DistanceBetween(c, a)
	s := (d1 + d2 + d3) / 2
	return math.Sqrt(math.Max(0, s*(s-d1)*(s-d2)*(s-d3)))
}

// FanArea triangulates the polygon as a fan anchored at points[0]. It is only correct for convex
// (more precisely, star-shaped from points[0]) polygons.
func FanArea(points []geo.GeoPoint) float64 {
	if len(points) < 3 {
		return 0
	}
	a := points[0]
	var total float64
	for n := len(points); n >= 3; n-- {
		total += TriangleArea(a, points[n-2], points[n-1])
	}
	return total
}

// diagonalCrosses reports whether the diagonal between remaining[0] and remaining[2] properly
// crosses an edge of the polygon that does not touch either of its ends.
func diagonalCrosses(remaining []geo.GeoPoint) bool {
	n := len(remaining)
	diagonal := geo.NewSegment(remaining[0], remaining[2])
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if i == 0 || i == 2 || j == 0 || j == 2 {
			continue
		}
		if diagonal.Intersects(geo.NewSegment(remaining[i], remaining[j])) {
			return true
		}
	}
	return false
}

// triangleHoldsVertex reports whether any vertex other than the first three lies inside or on the
// triangle they form.
func triangleHoldsVertex(remaining []geo.GeoPoint) bool {
	a, b, c := remaining[0], remaining[1], remaining[2]
	for _, p := range remaining[3:] {
		if geo.InTriangle(p, a, b, c) {
			return true
		}
	}
	return false
}

// earLike reports whether remaining[1] can be clipped: the diagonal stays clear of the other edges
// and the triangle is empty, so it lies either wholly inside or wholly outside the polygon.
func earLike(remaining []geo.GeoPoint) bool {
	return !diagonalCrosses(remaining) && !triangleHoldsVertex(remaining)
}

// CalculateArea returns the area in m² of the simple polygon described by points, which may be
// non-convex. The vertex between the first two remaining diagonal ends is clipped repeatedly: the
// triangle is added when it lies inside the remaining polygon (convex vertex) and subtracted when
// it lies outside (reflex vertex). When the diagonal crosses another edge, or another vertex sits
// in the triangle, the list is rotated so a different vertex is tried. Fewer than 3 points yield 0.
func CalculateArea(points []geo.GeoPoint) float64 {
	if len(points) < 3 {
		return 0
	}

	remaining := make([]geo.GeoPoint, len(points))
	copy(remaining, points)

	var total float64
	rotations := 0
	for len(remaining) >= 3 {
		if rotations < len(remaining) && !earLike(remaining) {
			remaining = append(remaining[1:len(remaining):len(remaining)], remaining[0])
			rotations++
			continue
		}

		a, b, c := remaining[0], remaining[1], remaining[2]
		triangle := TriangleArea(a, b, c)
		if TriangleIsInsideArea([3]geo.GeoPoint{a, b, c}, remaining) {
			total += triangle
		} else {
			total -= triangle
		}

		remaining = append(remaining[:1], remaining[2:]...)
		rotations = 0
	}

	return math.Max(0, total)
}
