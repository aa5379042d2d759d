package sections

import (
	"sort"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
)

// candidateSection is the consensus-stage output threaded through stage E
// (post-processing) before final section labeling.
type candidateSection struct {
	sport                    string
	polyline                 []geo.Point
	density                  []uint32
	representativeActivityID string
	memberActivityIDs        []string
	visitCount               int
	confidence               float64
	observationCount         int
	averageSpreadM           float64
}

func (c candidateSection) lengthM() float64 {
	return geo.PolylineLength(c.polyline)
}

// foldRatioFloor is the fraction of sampled reverse tail points that must
// land near the head before a polyline is judged folded (spec.md section
// 4.6.5 step 1).
const foldRatioFloor = 0.5

// foldSplit implements post-processing step 1. If c's polyline folds back
// on itself it is split into two candidates at the fold point; otherwise c
// is returned unchanged.
func foldSplit(c candidateSection, cfg config.SectionConfig) []candidateSection {
	n := len(c.polyline)
	if n < 6 {
		return []candidateSection{c}
	}

	thirdIdx := n / 3
	firstThird := c.polyline[:thirdIdx]
	lastThird := c.polyline[n-thirdIdx:]

	reversedTail := reverseSlice(lastThird)
	matches := 0
	for _, p := range reversedTail {
		if nearestDistance(p, firstThird) < proximityThresholdFor(cfg) {
			matches++
		}
	}
	if float64(matches)/float64(len(reversedTail)) <= foldRatioFloor {
		return []candidateSection{c}
	}

	firstHalf := c.polyline[:n/2]
	secondHalf := c.polyline[n/2:]
	splitIdx := earliestReturnIndex(secondHalf, firstHalf, cfg)
	if splitIdx < 0 || splitIdx >= len(secondHalf)-1 {
		return []candidateSection{c}
	}

	headPoly := c.polyline[:n/2+splitIdx]
	tailPoly := c.polyline[n/2+splitIdx:]

	var out []candidateSection
	if geo.PolylineLength(headPoly) >= cfg.MinSectionLengthMeters {
		out = append(out, withPolyline(c, headPoly))
	}
	if geo.PolylineLength(tailPoly) >= cfg.MinSectionLengthMeters {
		out = append(out, withPolyline(c, tailPoly))
	}
	if len(out) == 0 {
		return []candidateSection{c}
	}
	return out
}

func proximityThresholdFor(cfg config.SectionConfig) float64 {
	return cfg.ProximityThresholdMeters
}

func withPolyline(c candidateSection, polyline []geo.Point) candidateSection {
	c.polyline = polyline
	c.density = nil // per-point density of the old polyline no longer applies
	return c
}

func reverseSlice(pts []geo.Point) []geo.Point {
	out := make([]geo.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// earliestReturnIndex scans secondHalf in order, checking each point's
// nearest firstHalf neighbor by linear search, and returns the earliest
// index within the proximity threshold, or -1 if there is none.
func earliestReturnIndex(secondHalf, firstHalf []geo.Point, cfg config.SectionConfig) int {
	for i, p := range secondHalf {
		if nearestDistance(p, firstHalf) < cfg.ProximityThresholdMeters {
			return i
		}
	}
	return -1
}

// nearbyMergeThresholdFactor multiplies proximity_threshold into the
// generous merge distance used by step 2 (spec.md section 4.6.5 step 2).
const nearbyMergeThresholdFactor = 2.0

// nearbyMergeOverlapFloor is the fraction of a later section's points
// that must fall within the merge threshold of an earlier one before the
// later section is discarded as a duplicate.
const nearbyMergeOverlapFloor = 0.4

// nearbyMergeLengthFactor bounds how different two sections' lengths may
// be before they are still considered mergeable duplicates.
const nearbyMergeLengthFactor = 3.0

// nearbyMerge implements post-processing step 2: sections are sorted by
// descending visit count, and any later section that is mostly contained
// (forward or reversed) within an earlier one's merge radius is dropped.
func nearbyMerge(sections []candidateSection, cfg config.SectionConfig) []candidateSection {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].visitCount > sections[j].visitCount
	})

	threshold := nearbyMergeThresholdFactor * cfg.ProximityThresholdMeters
	kept := make([]candidateSection, 0, len(sections))

	for _, candidate := range sections {
		duplicate := false
		for _, existing := range kept {
			if !withinLengthFactor(candidate.lengthM(), existing.lengthM(), nearbyMergeLengthFactor) {
				continue
			}
			if overlapRatio(candidate.polyline, existing.polyline, threshold) >= nearbyMergeOverlapFloor ||
				overlapRatio(reverseSlice(candidate.polyline), existing.polyline, threshold) >= nearbyMergeOverlapFloor {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func withinLengthFactor(a, b, factor float64) bool {
	if a == 0 || b == 0 {
		return false
	}
	shorter, longer := a, b
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	return longer/shorter <= factor
}

// overlapRatio is the fraction of candidate's points that fall within
// threshold meters of any point of reference.
func overlapRatio(candidate, reference []geo.Point, threshold float64) float64 {
	if len(candidate) == 0 || len(reference) == 0 {
		return 0
	}
	near := 0
	for _, p := range candidate {
		if nearestDistance(p, reference) < threshold {
			near++
		}
	}
	return float64(near) / float64(len(candidate))
}

// containmentOverlapFloor is the fraction of a longer section's points
// that must fall near a shorter one before the longer is dropped in favor
// of the more specific shorter section (spec.md section 4.6.5 step 3).
const containmentOverlapFloor = 0.6

// containmentDropFloor is the fraction of a shorter section's points that
// must fall near a longer one before the shorter is dropped as contained.
const containmentDropFloor = 0.8

// mutualContainmentFloor governs the tie-break when both directions
// exceed it: the longer section is dropped.
const mutualContainmentFloor = 0.4

// containmentDedup implements post-processing step 3: sections are sorted
// by ascending length (ties broken by descending visit count), then any
// pair with high mutual point containment collapses to the more specific
// (shorter) one.
func containmentDedup(sections []candidateSection, cfg config.SectionConfig) []candidateSection {
	sort.SliceStable(sections, func(i, j int) bool {
		li, lj := sections[i].lengthM(), sections[j].lengthM()
		if li != lj {
			return li < lj
		}
		return sections[i].visitCount > sections[j].visitCount
	})

	dropped := make([]bool, len(sections))
	for i := range sections {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(sections); j++ {
			if dropped[j] {
				continue
			}
			shortInLong := pointContainment(sections[i].polyline, sections[j].polyline, cfg.ProximityThresholdMeters)
			longInShort := pointContainment(sections[j].polyline, sections[i].polyline, cfg.ProximityThresholdMeters)

			switch {
			case shortInLong > mutualContainmentFloor && longInShort > mutualContainmentFloor:
				dropped[j] = true // mutual containment: drop the longer
			case longInShort > containmentOverlapFloor:
				dropped[j] = true // j (longer) has most of its points near i: drop j
			case shortInLong > containmentDropFloor:
				dropped[i] = true // i is mostly contained in j: drop i
			}
		}
	}

	out := make([]candidateSection, 0, len(sections))
	for i, c := range sections {
		if !dropped[i] {
			out = append(out, c)
		}
	}
	return out
}

// pointContainment is the fraction of a's points within proximityThreshold
// of any point of b.
func pointContainment(a, b []geo.Point, proximityThreshold float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	near := 0
	for _, p := range a {
		if nearestDistance(p, b) < proximityThreshold {
			near++
		}
	}
	return float64(near) / float64(len(a))
}

// densityRatioFloor is the density-over-baseline ratio a sliding window
// must reach before it seeds a new region (spec.md section 4.6.5 step 4).
const densityRatioFloor = 2.0

// densityExpandFloor is the looser ratio used while expanding a seeded
// region outward.
const densityExpandFloor = 1.5

// densitySplitMinLengthM and densitySplitMinPoints are the minimum size
// an expanded region must reach to be emitted as an additional section.
const densitySplitMinLengthM = 100.0
const densitySplitMinPoints = 10

// densitySplitRecoverFloor is the fraction of the new polyline a
// contributing activity must re-cover for it to count toward
// min_activities for the split-off region.
const densitySplitRecoverFloor = 0.5

// densitySplit implements post-processing step 4: using the per-point
// density vector, locate sub-regions markedly denser than the section's
// own endpoints and, if enough activities re-cover them, emit them as
// additional sections. The original section is always retained.
func densitySplit(c candidateSection, tracksByID map[string]ActivityTrack, cfg config.SectionConfig) []candidateSection {
	n := len(c.polyline)
	if n < densitySplitMinPoints || len(c.density) != n {
		return nil
	}

	baseline := endpointBaseline(c.density)
	if baseline <= 0 {
		return nil
	}

	window := maxInt(n/5, 10)
	if window >= n {
		return nil
	}

	var extra []candidateSection
	i := 0
	for i+window <= n {
		if windowDensity(c.density, i, window)/baseline >= densityRatioFloor {
			start, end := expandRegion(c.density, i, i+window, baseline)
			region := c.polyline[start:end]
			if geo.PolylineLength(region) >= densitySplitMinLengthM && len(region) >= densitySplitMinPoints {
				if recoveringActivities(region, c.memberActivityIDs, tracksByID, cfg) >= cfg.MinActivities {
					split := c
					split.polyline = region
					split.density = c.density[start:end]
					extra = append(extra, split)
				}
			}
			i = end
			continue
		}
		i++
	}
	return extra
}

func endpointBaseline(density []uint32) float64 {
	k := maxInt(len(density)/10, 3)
	if k > len(density) {
		k = len(density)
	}
	sum := 0.0
	count := 0
	for i := 0; i < k; i++ {
		sum += float64(density[i])
		count++
	}
	for i := len(density) - k; i < len(density); i++ {
		if i < 0 {
			continue
		}
		sum += float64(density[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func windowDensity(density []uint32, start, length int) float64 {
	sum := 0.0
	for i := start; i < start+length && i < len(density); i++ {
		sum += float64(density[i])
	}
	return sum / float64(length)
}

func expandRegion(density []uint32, start, end int, baseline float64) (int, int) {
	for start > 0 && float64(density[start-1]) >= densityExpandFloor*baseline {
		start--
	}
	for end < len(density) && float64(density[end]) >= densityExpandFloor*baseline {
		end++
	}
	return start, end
}

func recoveringActivities(region []geo.Point, memberIDs []string, tracksByID map[string]ActivityTrack, cfg config.SectionConfig) int {
	count := 0
	for _, id := range memberIDs {
		track, ok := tracksByID[id]
		if !ok {
			continue
		}
		covered := 0
		for _, p := range region {
			if nearestDistance(p, track.Points) < cfg.ProximityThresholdMeters {
				covered++
			}
		}
		if float64(covered)/float64(len(region)) >= densitySplitRecoverFloor {
			count++
		}
	}
	return count
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
