// Package grouper decides which route signatures represent the same
// journey and merges them into groups (spec.md section 4.5). It applies a
// stricter predicate than the raw AMD match: same-journey membership also
// requires comparable lengths and matching endpoints, not just overlapping
// polylines.
package grouper

import (
	"sort"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/matcher"
	"github.com/banshee-data/trailmatch/internal/routesig"
	"github.com/banshee-data/trailmatch/internal/spatialindex"
)

// candidateExpansionDegrees widens a signature's own bounding box before
// querying the R-tree for neighbors, roughly 1 km at mid-latitudes.
const candidateExpansionDegrees = 0.01

// middleSanityFractions are the fractional positions sampled for the
// middle-point sanity check (spec.md section 4.5 step 5).
var middleSanityFractions = []float64{0.25, 0.50, 0.75}

// Group is one equivalence class of activity ids judged to be the same
// journey.
type Group struct {
	ActivityIDs []string
}

// GroupSignatures partitions signatures into same-journey groups using the
// batch procedure (spec.md section 4.5): build an R-tree over each
// signature's bounding box, query each signature's expanded bbox for
// candidates, and
// union every pair that both matches and satisfies the grouping
// predicate.
func GroupSignatures(signatures []*routesig.RouteSignature, cfg config.MatchConfig) []Group {
	byID := indexByID(signatures)
	idx := buildBoundsIndex(signatures)
	uf := newUnionFind()
	for _, sig := range signatures {
		uf.add(sig.ActivityID)
	}

	for _, sig := range signatures {
		for _, otherID := range candidateIDs(sig, idx) {
			if otherID <= sig.ActivityID {
				continue // skip self-pairs and lexicographic duplicates
			}
			other := byID[otherID]
			if shouldGroup(sig, other, cfg) {
				uf.union(sig.ActivityID, otherID)
			}
		}
	}

	return emitGroups(uf)
}

// pairMerge is one confirmed same-journey pair, produced by the parallel
// variant's fan-out stage before the sequential union-find reduction.
type pairMerge struct {
	a, b string
}

// GroupSignaturesParallel is identical to GroupSignatures except that pair
// evaluation runs across workers []func producing a collected list of
// merges; union-find is applied sequentially afterwards to keep the
// reduction deterministic (spec.md section 4.5, parallel variant).
//
// evaluate is expected to fan candidatePairs out across a worker pool
// (e.g. via a sync.WaitGroup or errgroup); it must return once every pair
// has been evaluated.
func GroupSignaturesParallel(
	signatures []*routesig.RouteSignature,
	cfg config.MatchConfig,
	evaluate func(pairs []candidatePair, eval func(candidatePair) (pairMerge, bool)) []pairMerge,
) []Group {
	byID := indexByID(signatures)
	idx := buildBoundsIndex(signatures)

	var pairs []candidatePair
	for _, sig := range signatures {
		for _, otherID := range candidateIDs(sig, idx) {
			if otherID <= sig.ActivityID {
				continue
			}
			pairs = append(pairs, candidatePair{a: sig.ActivityID, b: otherID})
		}
	}

	merges := evaluate(pairs, func(p candidatePair) (pairMerge, bool) {
		if shouldGroup(byID[p.a], byID[p.b], cfg) {
			return pairMerge{a: p.a, b: p.b}, true
		}
		return pairMerge{}, false
	})

	uf := newUnionFind()
	for _, sig := range signatures {
		uf.add(sig.ActivityID)
	}
	for _, m := range merges {
		uf.union(m.a, m.b)
	}
	return emitGroups(uf)
}

// candidatePair is one (id, id) pair awaiting grouping-predicate
// evaluation, already deduplicated lexicographically.
type candidatePair struct {
	a, b string
}

// GroupIncremental extends priorGroups with newSignatures. It builds an
// R-tree over every signature (prior + new), seeds union-find so each
// prior group's members point at a single representative, and evaluates
// only pairs where at least one side is new: new-vs-existing always,
// new-vs-new with lexicographic dedup (spec.md section 4.5, incremental
// variant).
func GroupIncremental(
	priorGroups []Group,
	priorSignatures []*routesig.RouteSignature,
	newSignatures []*routesig.RouteSignature,
	cfg config.MatchConfig,
) []Group {
	all := make([]*routesig.RouteSignature, 0, len(priorSignatures)+len(newSignatures))
	all = append(all, priorSignatures...)
	all = append(all, newSignatures...)
	byID := indexByID(all)
	idx := buildBoundsIndex(all)

	uf := newUnionFind()
	for _, sig := range all {
		uf.add(sig.ActivityID)
	}
	for _, g := range priorGroups {
		if len(g.ActivityIDs) == 0 {
			continue
		}
		rep := g.ActivityIDs[0]
		for _, id := range g.ActivityIDs[1:] {
			uf.union(rep, id)
		}
	}

	isNew := make(map[string]bool, len(newSignatures))
	for _, sig := range newSignatures {
		isNew[sig.ActivityID] = true
	}

	for _, sig := range newSignatures {
		for _, otherID := range candidateIDs(sig, idx) {
			if otherID == sig.ActivityID {
				continue
			}
			if isNew[otherID] && otherID <= sig.ActivityID {
				continue // new-vs-new: dedup lexicographically
			}
			other := byID[otherID]
			if shouldGroup(sig, other, cfg) {
				uf.union(sig.ActivityID, otherID)
			}
		}
	}

	return emitGroups(uf)
}

func emitGroups(uf *unionFind) []Group {
	raw := uf.groups()
	out := make([]Group, 0, len(raw))
	for _, ids := range raw {
		sort.Strings(ids)
		out = append(out, Group{ActivityIDs: ids})
	}
	return out
}

func indexByID(signatures []*routesig.RouteSignature) map[string]*routesig.RouteSignature {
	m := make(map[string]*routesig.RouteSignature, len(signatures))
	for _, sig := range signatures {
		m[sig.ActivityID] = sig
	}
	return m
}

// buildBoundsIndex indexes each signature by its own bounding box rather
// than a single representative point (spec.md section 4.5 step 1: "Build
// an R-tree of per-signature bounding boxes").
func buildBoundsIndex(signatures []*routesig.RouteSignature) *spatialindex.Index {
	entries := make([]spatialindex.BoundsEntry, len(signatures))
	for i, sig := range signatures {
		entries[i] = spatialindex.BoundsEntry{Bounds: sig.Bounds, Payload: sig.ActivityID}
	}
	return spatialindex.BuildBounds(entries)
}

// candidateIDs queries idx for every signature whose own bounding box
// overlaps sig's bounds expanded by candidateExpansionDegrees, so two
// long, thin, offset-but-crossing routes are still found as candidates
// even when their centroids land far apart.
func candidateIDs(sig *routesig.RouteSignature, idx *spatialindex.Index) []string {
	expanded := geo.Bounds{
		MinLat: sig.Bounds.MinLat - candidateExpansionDegrees,
		MaxLat: sig.Bounds.MaxLat + candidateExpansionDegrees,
		MinLng: sig.Bounds.MinLng - candidateExpansionDegrees,
		MaxLng: sig.Bounds.MaxLng + candidateExpansionDegrees,
	}
	entries := idx.SearchOverlapping(expanded)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Payload.(string))
	}
	return out
}

// shouldGroup applies the full section 4.5 grouping predicate: a matcher
// pass, then length/endpoint/middle-point checks the raw AMD match alone
// doesn't cover.
func shouldGroup(sig1, sig2 *routesig.RouteSignature, cfg config.MatchConfig) bool {
	if sig1.LengthM < cfg.MinRouteDistanceMeters || sig2.LengthM < cfg.MinRouteDistanceMeters {
		return false
	}

	result, ok := matcher.Compare(sig1, sig2, cfg)
	if !ok || result.MatchPercentage < cfg.MinMatchPercentage {
		return false
	}

	if lengthDiffRatio(sig1.LengthM, sig2.LengthM) > cfg.MaxDistanceDiffRatio {
		return false
	}

	loop1, loop2 := sig1.IsLoop(cfg), sig2.IsLoop(cfg)
	if loop1 && loop2 {
		if geo.Haversine(sig1.StartPoint, sig2.StartPoint) >= cfg.EndpointThresholdMeters {
			return false
		}
		return middlePointsAlign(sig1.Points, sig2.Points, cfg)
	}

	sameDirection := geo.Haversine(sig1.StartPoint, sig2.StartPoint) < cfg.EndpointThresholdMeters &&
		geo.Haversine(sig1.EndPoint, sig2.EndPoint) < cfg.EndpointThresholdMeters
	reverseDirection := geo.Haversine(sig1.StartPoint, sig2.EndPoint) < cfg.EndpointThresholdMeters &&
		geo.Haversine(sig1.EndPoint, sig2.StartPoint) < cfg.EndpointThresholdMeters

	switch {
	case sameDirection:
		return middlePointsAlign(sig1.Points, sig2.Points, cfg)
	case reverseDirection:
		return middlePointsAlign(sig1.Points, reversePoints(sig2.Points), cfg)
	default:
		return false
	}
}

func lengthDiffRatio(l1, l2 float64) float64 {
	longer := l1
	if l2 > longer {
		longer = l2
	}
	if longer == 0 {
		return 0
	}
	diff := l1 - l2
	if diff < 0 {
		diff = -diff
	}
	return diff / longer
}

// middlePointsAlign samples both point sequences at 25/50/75% fractional
// index positions and requires every corresponding pair to be within
// 2*endpoint_threshold (spec.md section 4.5 step 5).
func middlePointsAlign(a, b []geo.Point, cfg config.MatchConfig) bool {
	margin := 2 * cfg.EndpointThresholdMeters
	for _, frac := range middleSanityFractions {
		pa := pointAtFraction(a, frac)
		pb := pointAtFraction(b, frac)
		if geo.Haversine(pa, pb) >= margin {
			return false
		}
	}
	return true
}

func pointAtFraction(pts []geo.Point, frac float64) geo.Point {
	idx := int(frac * float64(len(pts)-1))
	return pts[idx]
}

func reversePoints(pts []geo.Point) []geo.Point {
	out := make([]geo.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
