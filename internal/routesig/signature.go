// Package routesig builds canonical RouteSignatures from raw GPS tracks:
// drop invalid points, simplify with Douglas-Peucker, cap the point count,
// and derive the length/bounds/centroid/endpoints every downstream
// algorithm (matcher, grouper, section detector, heatmap) relies on
// (spec.md section 4.3).
package routesig

import (
	"errors"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
)

// ErrTooFewPoints is returned when fewer than 2 valid points remain after
// filtering and simplification.
var ErrTooFewPoints = errors.New("routesig: fewer than 2 valid points")

// RouteSignature is the immutable, simplified representation of one
// activity's track. Once built it is never mutated; every field is
// recomputed from Points at construction time and stays consistent with
// it for the signature's lifetime (spec.md section 3 invariants).
type RouteSignature struct {
	ActivityID string
	Points     []geo.Point
	LengthM    float64
	StartPoint geo.Point
	EndPoint   geo.Point
	Bounds     geo.Bounds
	Centroid   geo.Point
}

// Make builds a RouteSignature for activityID from raw points.
//
// Steps (spec.md section 4.3):
//  1. Drop invalid points.
//  2. Fail if fewer than 2 remain.
//  3. Simplify with Douglas-Peucker at cfg.SimplificationTolerance.
//  4. If still over cfg.MaxSimplifiedPoints, uniformly subsample by index.
//  5. Fail if fewer than 2 remain.
//  6. Compute length, bounds, centroid.
func Make(activityID string, points []geo.Point, cfg config.MatchConfig) (*RouteSignature, error) {
	valid := make([]geo.Point, 0, len(points))
	for _, p := range points {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	if len(valid) < 2 {
		return nil, ErrTooFewPoints
	}

	simplified := douglasPeucker(valid, cfg.SimplificationTolerance)
	if len(simplified) > cfg.MaxSimplifiedPoints {
		simplified = uniformSubsample(simplified, cfg.MaxSimplifiedPoints)
	}
	if len(simplified) < 2 {
		return nil, ErrTooFewPoints
	}

	return &RouteSignature{
		ActivityID: activityID,
		Points:     simplified,
		LengthM:    geo.PolylineLength(simplified),
		StartPoint: simplified[0],
		EndPoint:   simplified[len(simplified)-1],
		Bounds:     geo.ComputeBounds(simplified),
		Centroid:   geo.ComputeCentroid(simplified),
	}, nil
}

// uniformSubsample selects exactly n points from pts by evenly spaced
// index, always keeping the first and last point.
func uniformSubsample(pts []geo.Point, n int) []geo.Point {
	if len(pts) <= n {
		return pts
	}
	if n < 2 {
		n = 2
	}
	out := make([]geo.Point, n)
	last := len(pts) - 1
	for i := 0; i < n; i++ {
		idx := i * last / (n - 1)
		out[i] = pts[idx]
	}
	return out
}

// IsLoop reports whether sig's start and end lie within
// cfg.EndpointThresholdMeters of each other (spec.md section 9). Shared by
// the matcher (direction labeling) and the grouper (loop-aware endpoint
// matching) since both need the same loop definition.
func (sig *RouteSignature) IsLoop(cfg config.MatchConfig) bool {
	return geo.Haversine(sig.StartPoint, sig.EndPoint) < cfg.EndpointThresholdMeters
}
