package sections

import (
	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/matcher"
)

// pairwiseMedoidCeiling is the slice count at or below which every pair of
// slices is compared exhaustively; above it, each candidate is checked
// only against a bounded sample of the others (spec.md section 4.6.3).
const pairwiseMedoidCeiling = 10

// boundedComparisonCount is how many other slices each candidate is
// compared against once a cluster exceeds pairwiseMedoidCeiling.
const boundedComparisonCount = 5

// slice is one candidate trace in a cluster, tagged with the activity it
// came from.
type slice struct {
	activityID string
	points     []geo.Point
}

// candidateSlices returns every (activityA, ASlice) and (activityB,
// BSlice) pair recorded by the cluster's overlaps, one entry per overlap
// side.
func candidateSlices(c *overlapCluster) []slice {
	out := make([]slice, 0, len(c.overlaps)*2)
	for _, o := range c.overlaps {
		out = append(out, slice{activityID: o.ActivityA, points: o.ASlice})
		out = append(out, slice{activityID: o.ActivityB, points: o.BSlice})
	}
	return out
}

// selectMedoid implements stage C: the medoid is the unchanged recorded
// slice whose mean symmetric AMD to the other slices is minimal. It is
// never synthesized, which preserves the smoothness and
// elevation-consistency of a real GPS recording. AMD is computed over each
// slice resampled to cfg.SamplePoints (spec.md section 4.6.3: sample_points
// bounds evaluation cost during medoid selection only); the returned slice
// itself still carries its original, unresampled points.
func selectMedoid(c *overlapCluster, cfg config.SectionConfig) slice {
	slices := candidateSlices(c)
	if len(slices) == 1 {
		return slices[0]
	}

	sampled := make([][]geo.Point, len(slices))
	for i, s := range slices {
		sampled[i] = matcher.ResampleByArcLength(s.points, cfg.SamplePoints)
	}

	bestIdx := 0
	bestMean := meanAMD(sampled, 0)
	for i := 1; i < len(slices); i++ {
		if m := meanAMD(sampled, i); m < bestMean {
			bestMean = m
			bestIdx = i
		}
	}
	return slices[bestIdx]
}

// meanAMD returns the mean symmetric AMD from sampled[i] to the others it
// is compared against: every other slice for small clusters, or a bounded
// evenly spaced sample for larger ones.
func meanAMD(sampled [][]geo.Point, i int) float64 {
	others := comparisonSet(sampled, i)
	if len(others) == 0 {
		return 0
	}
	sum := 0.0
	for _, j := range others {
		sum += symmetricAMDPoints(sampled[i], sampled[j])
	}
	return sum / float64(len(others))
}

// comparisonSet returns the indices sampled[i] should be compared against.
func comparisonSet(sampled [][]geo.Point, i int) []int {
	n := len(sampled)
	if n <= pairwiseMedoidCeiling {
		out := make([]int, 0, n-1)
		for j := 0; j < n; j++ {
			if j != i {
				out = append(out, j)
			}
		}
		return out
	}

	out := make([]int, 0, boundedComparisonCount)
	last := n - 1
	for k := 0; k < boundedComparisonCount; k++ {
		j := k * last / (boundedComparisonCount - 1)
		if j != i {
			out = append(out, j)
		}
	}
	return out
}

// symmetricAMDPoints is the same symmetric average-minimum-distance
// computation the matcher uses, applied directly to point slices rather
// than to RouteSignatures; selectMedoid passes it the overlap fragments
// after resampling them to cfg.SamplePoints.
func symmetricAMDPoints(a, b []geo.Point) float64 {
	return (averageMinDistancePoints(a, b) + averageMinDistancePoints(b, a)) / 2
}

func averageMinDistancePoints(from, to []geo.Point) float64 {
	if len(from) == 0 || len(to) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range from {
		sum += nearestDistance(p, to)
	}
	return sum / float64(len(from))
}
