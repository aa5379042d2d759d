package routesig

import (
	"math"

	"github.com/banshee-data/trailmatch/internal/geo"
)

// douglasPeucker simplifies pts using the Douglas-Peucker algorithm with
// perpendicular-distance tolerance tol, measured in degrees (a small-angle
// approximation that treats lat/lng as a flat plane — adequate at the
// tolerances this package uses, which are well under a kilometer).
//
// The first and last points are always kept.
func douglasPeucker(pts []geo.Point, tol float64) []geo.Point {
	if len(pts) < 3 {
		return pts
	}

	keep := make([]bool, len(pts))
	keep[0] = true
	keep[len(pts)-1] = true
	simplifySegment(pts, 0, len(pts)-1, tol, keep)

	out := make([]geo.Point, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

// simplifySegment recursively marks points between start and end as kept
// whenever they fall farther than tol from the chord start-end.
func simplifySegment(pts []geo.Point, start, end int, tol float64, keep []bool) {
	if end-start < 2 {
		return
	}

	maxDist := -1.0
	maxIdx := -1
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(pts[i], pts[start], pts[end])
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= tol {
		return
	}

	keep[maxIdx] = true
	simplifySegment(pts, start, maxIdx, tol, keep)
	simplifySegment(pts, maxIdx, end, tol, keep)
}

// perpendicularDistance returns the perpendicular distance (in degrees,
// flat-plane approximation) from p to the line through a and b.
func perpendicularDistance(p, a, b geo.Point) float64 {
	dx := b.Lng - a.Lng
	dy := b.Lat - a.Lat
	if dx == 0 && dy == 0 {
		ex := p.Lng - a.Lng
		ey := p.Lat - a.Lat
		return math.Sqrt(ex*ex + ey*ey)
	}

	num := math.Abs(dx*(a.Lat-p.Lat) - (a.Lng-p.Lng)*dy)
	den := math.Sqrt(dx*dx + dy*dy)
	return num / den
}
