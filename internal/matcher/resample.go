package matcher

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/trailmatch/internal/geo"
)

// resampleByArcLength returns exactly n points evenly spaced by geodesic
// arc length along pts (spec.md section 4.4.1). The first output point is
// always pts[0] and the last is always pts[len(pts)-1]; intermediate
// points are linearly interpolated in lat/lng on whichever segment
// crosses the next target arc-length multiple (a small-segment
// approximation, acceptable since resampled segments are short relative
// to the Earth's curvature).
// ResampleByArcLength exposes resampleByArcLength for callers outside this
// package that need the same arc-length-bounded sampling — e.g. medoid
// selection's sample_points-bounded AMD comparison (spec.md section 4.6.3).
func ResampleByArcLength(pts []geo.Point, n int) []geo.Point {
	return resampleByArcLength(pts, n)
}

func resampleByArcLength(pts []geo.Point, n int) []geo.Point {
	if len(pts) == 0 {
		return nil
	}
	if n < 2 {
		n = 2
	}
	if len(pts) == 1 {
		out := make([]geo.Point, n)
		for i := range out {
			out[i] = pts[0]
		}
		return out
	}

	total := geo.PolylineLength(pts)
	out := make([]geo.Point, 0, n)
	out = append(out, pts[0])

	if total == 0 {
		for len(out) < n {
			out = append(out, pts[len(pts)-1])
		}
		return out
	}

	step := total / float64(n-1)
	accumulated := 0.0
	nextTarget := step
	segStart := pts[0]

	for i := 1; i < len(pts) && len(out) < n-1; i++ {
		segEnd := pts[i]
		segLen := geo.Haversine(segStart, segEnd)

		for segLen > 0 && accumulated+segLen >= nextTarget && len(out) < n-1 {
			frac := (nextTarget - accumulated) / segLen
			out = append(out, lerp(segStart, segEnd, frac))
			nextTarget += step
		}

		accumulated += segLen
		segStart = segEnd
	}

	// Always emit the original last point; pad with it if the walk
	// terminated early (e.g. a run of zero-length segments).
	for len(out) < n-1 {
		out = append(out, pts[len(pts)-1])
	}
	out = append(out, pts[len(pts)-1])

	return out
}

// lerp linearly interpolates between a and b at fraction t in [0, 1]. This
// is a flat-plane approximation valid for the short segments produced by
// signature simplification.
func lerp(a, b geo.Point, t float64) geo.Point {
	va := r2.Vec{X: a.Lat, Y: a.Lng}
	vb := r2.Vec{X: b.Lat, Y: b.Lng}
	v := r2.Add(va, r2.Scale(t, r2.Sub(vb, va)))
	return geo.Point{Lat: v.X, Lng: v.Y}
}
