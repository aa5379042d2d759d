// Package trailmatch is the stable public surface over the route-matching,
// grouping, section-detection, and heatmap subsystems (spec.md section 6).
// It re-exports the canonical internal/* types and functions as aliases so
// callers get one import instead of seven.
//
// New code within this module should still prefer importing the layer
// packages directly; this package exists for external consumers who want
// the whole library surface behind a single name.
package trailmatch

import (
	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/grouper"
	"github.com/banshee-data/trailmatch/internal/heatmap"
	"github.com/banshee-data/trailmatch/internal/matcher"
	"github.com/banshee-data/trailmatch/internal/routesig"
	"github.com/banshee-data/trailmatch/internal/sections"
)

// ── Geo primitives ───────────────────────────────────────────────────

type Point = geo.Point
type Bounds = geo.Bounds

// ── Configuration ────────────────────────────────────────────────────

type MatchConfig = config.MatchConfig
type SectionConfig = config.SectionConfig
type HeatmapConfig = config.HeatmapConfig

var DefaultMatchConfig = config.DefaultMatchConfig
var DefaultSectionConfig = config.DefaultSectionConfig
var DefaultHeatmapConfig = config.DefaultHeatmapConfig
var LoadMatchConfigFile = config.LoadMatchConfigFile

// ── Signature builder ────────────────────────────────────────────────

type RouteSignature = routesig.RouteSignature

var MakeSignature = routesig.Make
var ErrTooFewPoints = routesig.ErrTooFewPoints

// ── Route matcher ────────────────────────────────────────────────────

type MatchResult = matcher.MatchResult
type Direction = matcher.Direction

const (
	DirectionSame    = matcher.DirectionSame
	DirectionReverse = matcher.DirectionReverse
	DirectionPartial = matcher.DirectionPartial
)

// Compare runs the symmetric-AMD route comparison (spec.md section 4.4).
func Compare(sig1, sig2 *RouteSignature, cfg MatchConfig) (*MatchResult, bool) {
	return matcher.Compare(sig1, sig2, cfg)
}

// ── Grouper ──────────────────────────────────────────────────────────

type RouteGroup = grouper.Group

// Group partitions signatures into same-journey groups (spec.md section
// 4.5, batch variant).
func Group(signatures []*RouteSignature, cfg MatchConfig) []RouteGroup {
	return grouper.GroupSignatures(signatures, cfg)
}

// GroupIncremental extends priorGroups with newSignatures (spec.md section
// 4.5, incremental variant).
func GroupIncremental(priorGroups []RouteGroup, priorSignatures, newSignatures []*RouteSignature, cfg MatchConfig) []RouteGroup {
	return grouper.GroupIncremental(priorGroups, priorSignatures, newSignatures, cfg)
}

// GroupParallel is GroupSignatures with pair evaluation fanned out across
// maxWorkers goroutines (spec.md section 4.5, parallel variant). Union-find
// reduction still runs sequentially afterwards, so results are identical to
// Group regardless of maxWorkers.
func GroupParallel(signatures []*RouteSignature, cfg MatchConfig, maxWorkers int) []RouteGroup {
	return grouper.GroupSignaturesParallel(signatures, cfg, grouper.DefaultParallelEvaluate(maxWorkers))
}

// ── Section detector ─────────────────────────────────────────────────

type ActivityTrack = sections.ActivityTrack
type Section = sections.Section
type ActivityPortion = sections.ActivityPortion

// DetectSections runs the full pairwise-overlap / clustering / medoid /
// consensus / post-processing pipeline (spec.md section 4.6).
func DetectSections(tracks []ActivityTrack, cfg SectionConfig, routeGroupIDsForActivity map[string][]string) []Section {
	return sections.DetectSections(tracks, cfg, routeGroupIDsForActivity)
}

// ── Heatmap aggregator ───────────────────────────────────────────────

type HeatmapResult = heatmap.Result
type HeatmapCell = heatmap.Cell
type ActivityMeta = heatmap.ActivityMeta

// BuildHeatmap ingests signatures into a sparse visit-density grid
// (spec.md section 4.7).
func BuildHeatmap(signatures []*RouteSignature, metaByActivity map[string]ActivityMeta, cfg HeatmapConfig) *HeatmapResult {
	return heatmap.Build(signatures, metaByActivity, cfg)
}

// QueryHeatmap answers a tap-to-query lookup against a previously built
// heatmap, returning the containing cell plus its synthesized label.
func QueryHeatmap(result *HeatmapResult, lat, lng, cellSize float64) (*HeatmapCell, string, bool) {
	return heatmap.Query(result, lat, lng, cellSize)
}
