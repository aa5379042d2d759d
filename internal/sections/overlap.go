package sections

import (
	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/spatialindex"
)

// nearRun tracks the current contiguous run of A-points near B while
// walking A point by point (spec.md section 4.6.1 step 3).
type nearRun struct {
	startIdx, endIdx int
	minB, maxB       int
	lengthM          float64
}

// findFullTrackOverlap implements stage A for one ordered pair (a, b):
// bounds prefilter, then a single walk of a's points against b's R-tree,
// tracking the best contiguous near-run by geodesic length. Returns false
// if no run reached cfg.MinSectionLengthMeters.
func findFullTrackOverlap(a, b ActivityTrack, cfg config.SectionConfig) (FullTrackOverlap, bool) {
	boundsA := geo.ComputeBounds(a.Points)
	boundsB := geo.ComputeBounds(b.Points)
	refLat := boundsA.MinLat
	if !geo.BoundsOverlap(boundsA, boundsB, cfg.ProximityThresholdMeters, refLat) {
		return FullTrackOverlap{}, false
	}
	if len(a.Points) < 2 || len(b.Points) < 2 {
		return FullTrackOverlap{}, false
	}

	bEntries := make([]spatialindex.Entry, len(b.Points))
	for i, p := range b.Points {
		bEntries[i] = spatialindex.Entry{Point: p, Payload: i}
	}
	bIdx := spatialindex.Build(bEntries)
	sqThreshold := spatialindex.SquaredDegreeThreshold(cfg.ProximityThresholdMeters)

	var best *nearRun
	var current *nearRun

	closeRun := func(endIdx int) {
		if current == nil {
			return
		}
		current.endIdx = endIdx
		current.lengthM = runLength(a.Points, current.startIdx, endIdx)
		if current.lengthM >= cfg.MinSectionLengthMeters && (best == nil || current.lengthM > best.lengthM) {
			best = current
		}
		current = nil
	}

	for i, p := range a.Points {
		nearest, ok := bIdx.NearestNeighbor(p)
		near := ok && spatialindex.SquaredDegreeDistance(p, nearest.Point) <= sqThreshold

		if near {
			bi := nearest.Payload.(int)
			if current == nil {
				current = &nearRun{startIdx: i, minB: bi, maxB: bi}
			} else {
				if bi < current.minB {
					current.minB = bi
				}
				if bi > current.maxB {
					current.maxB = bi
				}
			}
		} else {
			closeRun(i - 1)
		}
	}
	closeRun(len(a.Points) - 1)

	if best == nil {
		return FullTrackOverlap{}, false
	}

	aSlice := a.Points[best.startIdx : best.endIdx+1]
	bSlice := b.Points[best.minB : best.maxB+1]

	return FullTrackOverlap{
		ActivityA: a.ActivityID,
		ActivityB: b.ActivityID,
		ASlice:    aSlice,
		BSlice:    bSlice,
		Centroid:  geo.ComputeCentroid(aSlice),
	}, true
}

// runLength returns the geodesic length of pts[start:end+1].
func runLength(pts []geo.Point, start, end int) float64 {
	if end <= start {
		return 0
	}
	return geo.PolylineLength(pts[start : end+1])
}

// discoverOverlaps runs stage A across every same-sport ordered pair of
// tracks (A, B) with A != B.
func discoverOverlaps(tracks []ActivityTrack, cfg config.SectionConfig) []FullTrackOverlap {
	var overlaps []FullTrackOverlap
	for _, a := range tracks {
		for _, b := range tracks {
			if a.ActivityID == b.ActivityID || a.Sport != b.Sport {
				continue
			}
			if o, ok := findFullTrackOverlap(a, b, cfg); ok {
				overlaps = append(overlaps, o)
			}
		}
	}
	return overlaps
}
