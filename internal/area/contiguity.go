package area

import "github.com/fieldmeasure/fieldpatch/internal/geo"

// AreaIsContiguous checks that the newest edge (the last two points) does not cross any earlier,
// non-adjacent edge. With closingEdge set the implicit edge from the last point back to the first
// is checked as well. The earlier edges must not cross each other; the engine falls back to
// IsSimpleChain while a failed state is still on the stack.
func AreaIsContiguous(points []geo.GeoPoint, closingEdge bool) bool {
	n := len(points)
	if n < 3 {
		return true
	}

	newest := geo.NewSegment(points[n-2], points[n-1])
	for i := 0; i < n-3; i++ {
		if newest.Intersects(geo.NewSegment(points[i], points[i+1])) {
			return false
		}
	}

	if closingEdge {
		closing := geo.NewSegment(points[n-1], points[0])
		for i := 1; i < n-2; i++ {
			if closing.Intersects(geo.NewSegment(points[i], points[i+1])) {
				return false
			}
		}
	}
	return true
}

// IsSimplePolygon tests every pair of non-adjacent edges of the closed polygon, including the
// closing edge. O(n²).
func IsSimplePolygon(points []geo.GeoPoint) bool {
	return IsSimpleChain(points, true)
}

// IsSimpleChain tests every pair of non-adjacent edges of the trace. The closing edge is only
// included when closed is set.
func IsSimpleChain(points []geo.GeoPoint, closed bool) bool {
	n := len(points)
	if n < 4 {
		return true
	}

	edges := make([]geo.Segment, 0, n)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, geo.NewSegment(points[i], points[i+1]))
	}
	if closed {
		edges = append(edges, geo.NewSegment(points[n-1], points[0]))
	}

	for i := 0; i < len(edges); i++ {
		for j := i + 2; j < len(edges); j++ {
			// first and closing edge share vertex 0
			if closed && i == 0 && j == n-1 {
				continue
			}
			if edges[i].Intersects(edges[j]) {
				return false
			}
		}
	}
	return true
}
