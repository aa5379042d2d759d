// Package matcher compares two RouteSignatures and scores how well they
// match using Average Minimum Distance over arc-length-resampled points
// (spec.md section 4.4).
package matcher

import (
	"math"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/routesig"
)

// Direction labels a MatchResult's relative traversal direction.
type Direction string

const (
	DirectionSame    Direction = "same"
	DirectionReverse Direction = "reverse"
	DirectionPartial Direction = "partial"
)

// endpointMargin is the minimum score advantage rev_score must hold over
// same_score before a pair is labeled reverse (spec.md section 4.4 step 6).
const endpointMargin = 100.0

// partialScoreCeiling is the score below which a match's direction label is
// overwritten with "partial" regardless of the same/reverse computation
// (spec.md section 4.4 step 7).
const partialScoreCeiling = 70.0

// lengthRatioFloor is the minimum ratio of shorter-to-longer signature
// length required to proceed past the length prefilter (spec.md section
// 4.4 step 1).
const lengthRatioFloor = 0.5

// MatchResult is the outcome of comparing two route signatures.
type MatchResult struct {
	ActivityID1     string
	ActivityID2     string
	MatchPercentage float64
	Direction       Direction
	AMDMeters       float64
}

// Compare implements the full section 4.4 procedure. The second return
// value is false when the pair is a no-match (either the length prefilter
// or the min-match-percentage gate rejected it); in that case the
// returned *MatchResult is nil.
func Compare(sig1, sig2 *routesig.RouteSignature, cfg config.MatchConfig) (*MatchResult, bool) {
	if !lengthRatioOK(sig1.LengthM, sig2.LengthM) {
		return nil, false
	}

	a := resampleByArcLength(sig1.Points, cfg.ResampleCount)
	b := resampleByArcLength(sig2.Points, cfg.ResampleCount)

	avgAMD := symmetricAMD(a, b)
	score := scoreFromAMD(avgAMD, cfg.PerfectThresholdMeters, cfg.ZeroThresholdMeters)
	if score < cfg.MinMatchPercentage {
		return nil, false
	}

	direction := directionOf(sig1, sig2, cfg)
	if score < partialScoreCeiling {
		direction = DirectionPartial
	}

	return &MatchResult{
		ActivityID1:     sig1.ActivityID,
		ActivityID2:     sig2.ActivityID,
		MatchPercentage: score,
		Direction:       direction,
		AMDMeters:       avgAMD,
	}, true
}

// lengthRatioOK reports whether the shorter-over-longer length ratio meets
// lengthRatioFloor.
func lengthRatioOK(l1, l2 float64) bool {
	if l1 == 0 || l2 == 0 {
		return false
	}
	shorter, longer := l1, l2
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	return shorter/longer >= lengthRatioFloor
}

// symmetricAMD averages the A-to-B and B-to-A average minimum distances.
func symmetricAMD(a, b []geo.Point) float64 {
	return (averageMinDistance(a, b) + averageMinDistance(b, a)) / 2
}

// averageMinDistance is, for each point in from, its minimum haversine
// distance to any point in to, averaged over from.
func averageMinDistance(from, to []geo.Point) float64 {
	if len(from) == 0 || len(to) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range from {
		min := math.Inf(1)
		for _, q := range to {
			if d := geo.Haversine(p, q); d < min {
				min = d
			}
		}
		sum += min
	}
	return sum / float64(len(from))
}

// scoreFromAMD linearly maps avgAMD to a 0-100 score: perfect or below maps
// to 100, zero or above maps to 0, and values in between are interpolated.
func scoreFromAMD(avgAMD, perfect, zero float64) float64 {
	if avgAMD <= perfect {
		return 100
	}
	if avgAMD >= zero {
		return 0
	}
	return 100 * (zero - avgAMD) / (zero - perfect)
}

// directionOf implements step 6: loop-aware same/reverse labeling.
func directionOf(sig1, sig2 *routesig.RouteSignature, cfg config.MatchConfig) Direction {
	if sig1.IsLoop(cfg) && sig2.IsLoop(cfg) {
		return DirectionSame
	}

	s1, e1 := sig1.StartPoint, sig1.EndPoint
	s2, e2 := sig2.StartPoint, sig2.EndPoint

	sameScore := geo.Haversine(s2, s1) + geo.Haversine(e2, e1)
	revScore := geo.Haversine(s2, e1) + geo.Haversine(e2, s1)

	if revScore < sameScore-endpointMargin {
		return DirectionReverse
	}
	return DirectionSame
}
