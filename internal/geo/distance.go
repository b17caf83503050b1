package geo

import "math"

// WGS84 ellipsoid radii in meters.
const (
	EquatorialRadius = 6378137.0
	PolarRadius      = 6356752.3
)

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// LocalEarthRadius returns the geocentric radius of the WGS84 ellipsoid at the given latitude,
// in meters. It ranges from ~6356.75 km at the poles to ~6378.14 km at the equator.
func LocalEarthRadius(latitude float64) float64 {
	phi := degToRad(latitude)
	cos, sin := math.Cos(phi), math.Sin(phi)

	numerator := math.Pow(EquatorialRadius*EquatorialRadius*cos, 2) + math.Pow(PolarRadius*PolarRadius*sin, 2)
	denominator := math.Pow(EquatorialRadius*cos, 2) + math.Pow(PolarRadius*sin, 2)
	return math.Sqrt(numerator / denominator)
}

// DistanceBetween returns the haversine distance in meters between p1 and p2, using the local
// earth radius at p1's latitude.
func DistanceBetween(p1, p2 GeoPoint) float64 {
	r := LocalEarthRadius(p1.Latitude)
	phi1 := degToRad(p1.Latitude)
	phi2 := degToRad(p2.Latitude)
	deltaPhi := degToRad(p2.Latitude - p1.Latitude)
	deltaLambda := degToRad(p2.Longitude - p1.Longitude)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return r * c
}

// Bearing returns the initial great-circle bearing from one point to another in degrees,
// normalized to [0, 360).
func Bearing(from, to GeoPoint) float64 {
	phi1 := degToRad(from.Latitude)
	phi2 := degToRad(to.Latitude)
	deltaLambda := degToRad(to.Longitude - from.Longitude)

	y := math.Sin(deltaLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)
	return math.Mod(radToDeg(math.Atan2(y, x))+360, 360)
}

// Perimeter sums the geodesic lengths of consecutive edges. With closed set the edge from the
// last point back to the first is included.
func Perimeter(points []GeoPoint, closed bool) float64 {
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += DistanceBetween(points[i-1], points[i])
	}
	if closed && len(points) > 2 {
		total += DistanceBetween(points[len(points)-1], points[0])
	}
	return total
}
