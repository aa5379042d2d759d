package sections

import (
	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
)

// minSimilaritySampleCount is the number of seed points sampled when
// testing whether a candidate overlap's A-slice is geometrically similar
// to the cluster seed's (spec.md section 4.6.2).
const minSimilaritySampleCount = 10

// similarityRatioFloor is the fraction of sampled seed points that must
// land near the candidate's A-slice for the candidate to be absorbed.
const similarityRatioFloor = 0.5

// clusterOverlaps implements stage B: sequential clustering of overlaps by
// centroid proximity and A-slice geometric similarity (spec.md section
// 4.6.2). Clusters with fewer than cfg.MinActivities distinct activities
// are dropped.
func clusterOverlaps(overlaps []FullTrackOverlap, cfg config.SectionConfig) []*overlapCluster {
	assigned := make([]bool, len(overlaps))
	var clusters []*overlapCluster

	for i, seed := range overlaps {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		c := newCluster(seed)

		for j := i + 1; j < len(overlaps); j++ {
			if assigned[j] {
				continue
			}
			candidate := overlaps[j]
			if !nearCentroid(seed.Centroid, candidate.Centroid, cfg.ClusterToleranceMeters) {
				continue
			}
			if !similarASlices(seed.ASlice, candidate.ASlice, cfg.ProximityThresholdMeters) {
				continue
			}
			assigned[j] = true
			c.absorb(candidate)
		}

		clusters = append(clusters, c)
	}

	out := clusters[:0]
	for _, c := range clusters {
		if len(c.activityIDs) >= cfg.MinActivities {
			out = append(out, c)
		}
	}
	return out
}

func nearCentroid(a, b geo.Point, toleranceMeters float64) bool {
	return geo.Haversine(a, b) < toleranceMeters
}

// similarASlices samples up to minSimilaritySampleCount evenly spaced
// points from seed, counts how many fall within proximityThreshold of any
// point in candidate, and requires at least similarityRatioFloor of them
// to match.
func similarASlices(seed, candidate []geo.Point, proximityThreshold float64) bool {
	sample := sampleEvenly(seed, minSimilaritySampleCount)
	if len(sample) == 0 {
		return false
	}

	matches := 0
	for _, p := range sample {
		if nearestDistance(p, candidate) < proximityThreshold {
			matches++
		}
	}
	return float64(matches)/float64(len(sample)) >= similarityRatioFloor
}

// sampleEvenly picks up to n evenly spaced points by index (or all of pts
// if it has fewer than n).
func sampleEvenly(pts []geo.Point, n int) []geo.Point {
	if len(pts) <= n {
		return pts
	}
	out := make([]geo.Point, n)
	last := len(pts) - 1
	for i := 0; i < n; i++ {
		out[i] = pts[i*last/(n-1)]
	}
	return out
}

// nearestDistance returns the minimum haversine distance from p to any
// point in pts.
func nearestDistance(p geo.Point, pts []geo.Point) float64 {
	min := geo.Haversine(p, pts[0])
	for _, q := range pts[1:] {
		if d := geo.Haversine(p, q); d < min {
			min = d
		}
	}
	return min
}
