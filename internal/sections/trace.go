package sections

import (
	"sort"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/spatialindex"
)

// maxGapPoints is how many consecutive far points are tolerated inside a
// near-sequence before it is ended, absorbing small GPS gaps (spec.md
// section 4.6.6).
const maxGapPoints = 3

// minTraceSequencePoints is the minimum length a near-sequence must reach
// to be kept.
const minTraceSequencePoints = 3

// nearSequence is one contiguous (modulo small gaps) run of a track's
// points near the section polyline.
type nearSequence struct {
	startIdx, endIdx int
}

// extractPortions walks each member activity's full track against the
// post-processed polyline and emits one ActivityPortion per surviving
// near-sequence, a member's portions ordered by where each first touches
// the polyline. Members without a track or without any near-sequence
// contribute no portion.
func extractPortions(polyline []geo.Point, memberIDs []string, tracksByID map[string]ActivityTrack, cfg config.SectionConfig) []ActivityPortion {
	entries := make([]spatialindex.Entry, len(polyline))
	for i, p := range polyline {
		entries[i] = spatialindex.Entry{Point: p, Payload: i}
	}
	idx := spatialindex.Build(entries)
	sqThreshold := spatialindex.SquaredDegreeThreshold(cfg.ProximityThresholdMeters)

	var portions []ActivityPortion
	for _, id := range memberIDs {
		track, ok := tracksByID[id]
		if !ok {
			continue
		}
		sequences := nearSequences(track.Points, idx, sqThreshold)
		if len(sequences) == 0 {
			continue
		}

		sort.SliceStable(sequences, func(i, j int) bool {
			return firstPolylineIdx(track.Points[sequences[i].startIdx], idx) <
				firstPolylineIdx(track.Points[sequences[j].startIdx], idx)
		})

		for _, seq := range sequences {
			slice := track.Points[seq.startIdx : seq.endIdx+1]
			portions = append(portions, ActivityPortion{
				ActivityID: id,
				StartIdx:   seq.startIdx,
				EndIdx:     seq.endIdx,
				LengthM:    geo.PolylineLength(slice),
				Direction:  string(directionOfPortion(slice, polyline)),
			})
		}
	}
	return portions
}

// nearSequences walks track point by point, keeping runs near the section
// polyline alive across up to maxGapPoints consecutive far points.
func nearSequences(track []geo.Point, idx *spatialindex.Index, sqThreshold float64) []nearSequence {
	var sequences []nearSequence
	var current *nearSequence
	gap := 0

	flush := func() {
		if current == nil {
			return
		}
		if current.endIdx-current.startIdx+1 >= minTraceSequencePoints {
			sequences = append(sequences, *current)
		}
		current = nil
	}

	for i, p := range track {
		_, ok := idx.NearestNeighbor(p)
		near := ok && withinThreshold(p, idx, sqThreshold)

		switch {
		case near:
			if current == nil {
				current = &nearSequence{startIdx: i, endIdx: i}
			} else {
				current.endIdx = i
			}
			gap = 0
		case current != nil && gap < maxGapPoints:
			gap++
			current.endIdx = i
		default:
			flush()
			gap = 0
		}
	}
	flush()
	return sequences
}

func withinThreshold(p geo.Point, idx *spatialindex.Index, sqThreshold float64) bool {
	nearest, ok := idx.NearestNeighbor(p)
	return ok && spatialindex.SquaredDegreeDistance(p, nearest.Point) <= sqThreshold
}

// firstPolylineIdx returns the section-polyline index nearest p, used to
// order an activity's surviving near-sequences by where they fall along
// the section (so out-and-back traversals serialize correctly).
func firstPolylineIdx(p geo.Point, idx *spatialindex.Index) int {
	nearest, ok := idx.NearestNeighbor(p)
	if !ok {
		return 0
	}
	return nearest.Payload.(int)
}

// directionOfPortion labels a portion "same" or "reverse" relative to the
// section polyline by comparing endpoint alignment, mirroring the
// matcher's direction convention.
func directionOfPortion(slice, polyline []geo.Point) string {
	if len(slice) == 0 || len(polyline) == 0 {
		return "same"
	}
	sameScore := geo.Haversine(slice[0], polyline[0]) + geo.Haversine(slice[len(slice)-1], polyline[len(polyline)-1])
	reverseScore := geo.Haversine(slice[0], polyline[len(polyline)-1]) + geo.Haversine(slice[len(slice)-1], polyline[0])
	if reverseScore < sameScore {
		return "reverse"
	}
	return "same"
}
