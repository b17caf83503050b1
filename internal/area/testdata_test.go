package area

import "github.com/fieldmeasure/fieldpatch/internal/geo"

// Hervanta field patch. A third-party map tool reports 29 970 m² for it.
var hervantaField = []geo.GeoPoint{
	{Latitude: 61.48198978573224, Longitude: 23.494089554015307},
	{Latitude: 61.48269373858714, Longitude: 23.496701462253842},
	{Latitude: 61.48151209437239, Longitude: 23.498544542664106},
	{Latitude: 61.48070754498803, Longitude: 23.497038482671723},
	{Latitude: 61.48050137586181, Longitude: 23.496080080858388},
	{Latitude: 61.48075782993367, Longitude: 23.49560614589575},
	{Latitude: 61.480938855065496, Longitude: 23.495827315544975},
}

var linnanmaaParkingLot = []geo.GeoPoint{
	{Latitude: 65.05334320638865, Longitude: 25.45756870519559},
	{Latitude: 65.05376177921661, Longitude: 25.45989149809213},
	{Latitude: 65.05440433228317, Longitude: 25.459194123831278},
	{Latitude: 65.05405364503399, Longitude: 25.45691961071701},
}

// Extended parking lot. The 6th and 7th points make the closing edge cross the trace; the 8th
// point makes it simple again.
var linnanmaaParkingLotExtended = []geo.GeoPoint{
	{Latitude: 65.05334320638865, Longitude: 25.45756870519559},
	{Latitude: 65.05376177921661, Longitude: 25.45989149809213},
	{Latitude: 65.05440433228317, Longitude: 25.459194123831278},
	{Latitude: 65.05424095159584, Longitude: 25.458307559068857},
	{Latitude: 65.05440217271207, Longitude: 25.458167887503375},
	{Latitude: 65.05452308790923, Longitude: 25.45908677938155},
	{Latitude: 65.05509045189262, Longitude: 25.45867511582013},
	{Latitude: 65.05508425125863, Longitude: 25.45613897423636},
}

// Roughly 300 m x 400 m triangle near Kaijonharju.
var kaijonharju = []geo.GeoPoint{
	{Latitude: 65.05573889248743, Longitude: 25.472575661607674},
	{Latitude: 65.05920837121779, Longitude: 25.472507101708246},
	{Latitude: 65.0554401106946, Longitude: 25.465993911263123},
	{Latitude: 65.05732912631211, Longitude: 25.47024462502731},  // does not cross
	{Latitude: 65.06003712432415, Longitude: 25.476986348733774}, // crosses the first edge
}

// bowtie in degrees: the fourth point crosses the first edge.
var bowtie = []geo.GeoPoint{
	{Latitude: 0, Longitude: 0},
	{Latitude: 1, Longitude: 1},
	{Latitude: 0, Longitude: 1},
	{Latitude: 1, Longitude: 0},
}

func rotate(points []geo.GeoPoint, k int) []geo.GeoPoint {
	out := make([]geo.GeoPoint, 0, len(points))
	out = append(out, points[k:]...)
	return append(out, points[:k]...)
}

func reverse(points []geo.GeoPoint) []geo.GeoPoint {
	out := make([]geo.GeoPoint, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}
