// Package geo provides the geographic primitives shared by every spatial
// algorithm in this module: haversine distance, polyline length, bounding
// boxes, centroids, and the conservative meter<->degree conversions used to
// drive the R-tree prefilters in internal/spatialindex.
package geo

import "math"

// earthRadiusMeters is the mean radius of a sphere approximating the
// Earth, used by the haversine great-circle formula.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in degrees. It is an immutable value type;
// every function in this package takes and returns Points by value.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether p has finite coordinates within WGS84 range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Bounds is an axis-aligned min/max lat/lng box.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// emptyBounds is the sentinel bounds returned for degenerate (empty) point
// sequences. Its inverted min/max relationship guarantees every overlap
// test against it fails.
var emptyBounds = Bounds{
	MinLat: math.Inf(1), MaxLat: math.Inf(-1),
	MinLng: math.Inf(1), MaxLng: math.Inf(-1),
}

// Contains reports whether p lies within b (inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Haversine returns the great-circle distance between p1 and p2 in meters,
// treating the Earth as a sphere of radius earthRadiusMeters.
func Haversine(p1, p2 Point) float64 {
	lat1 := p1.Lat * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	dLat := (p2.Lat - p1.Lat) * math.Pi / 180
	dLng := (p2.Lng - p1.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// PolylineLength returns the sum of consecutive-point haversine distances
// along pts. A sequence of fewer than 2 points has length 0.
func PolylineLength(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += Haversine(pts[i-1], pts[i])
	}
	return total
}

// ComputeBounds returns the axis-aligned bounding box of pts. An empty
// sequence yields emptyBounds, which fails every BoundsOverlap/Contains test by
// construction.
func ComputeBounds(pts []Point) Bounds {
	if len(pts) == 0 {
		return emptyBounds
	}
	b := Bounds{
		MinLat: pts[0].Lat, MaxLat: pts[0].Lat,
		MinLng: pts[0].Lng, MaxLng: pts[0].Lng,
	}
	for _, p := range pts[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
	}
	return b
}

// ComputeCentroid returns the arithmetic mean lat/lng of pts. An empty
// sequence returns (0, 0) per spec.
func ComputeCentroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sumLat, sumLng float64
	for _, p := range pts {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(pts))
	return Point{Lat: sumLat / n, Lng: sumLng / n}
}

// MetersToDegrees converts a distance in meters to an approximate distance
// in degrees at the given reference latitude. It is deliberately
// conservative: it uses max(cos(refLat), 0.1) so the result never
// under-estimates the degree span near the poles, which would make a
// downstream bounding-box buffer too tight.
func MetersToDegrees(meters, refLatDegrees float64) float64 {
	refLatRad := refLatDegrees * math.Pi / 180
	metersPerDegree := 111320.0 * math.Max(math.Cos(refLatRad), 0.1)
	return meters / metersPerDegree
}

// BoundsOverlap reports whether a and b overlap once each is expanded by
// bufferMeters (converted to degrees at refLatDegrees). Both axes must
// overlap for the boxes to be considered overlapping.
func BoundsOverlap(a, b Bounds, bufferMeters, refLatDegrees float64) bool {
	bufDeg := MetersToDegrees(bufferMeters, refLatDegrees)
	latOverlap := a.MinLat-bufDeg <= b.MaxLat+bufDeg && b.MinLat-bufDeg <= a.MaxLat+bufDeg
	lngOverlap := a.MinLng-bufDeg <= b.MaxLng+bufDeg && b.MinLng-bufDeg <= a.MaxLng+bufDeg
	return latOverlap && lngOverlap
}
