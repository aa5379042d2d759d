// Package heatmap builds a sparse visit-density grid from route
// signatures and answers tap-to-query lookups with a human-readable label
// (spec.md section 4.7).
package heatmap

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/routesig"
)

// latMetersPerDegree is the constant meters-per-degree-latitude used to
// derive the longitude scale at a given reference latitude (spec.md
// section 4.7 step 1).
const latMetersPerDegree = 111320.0

// ActivityMeta is the per-activity metadata the aggregator folds into
// each cell a signature's points land in.
type ActivityMeta struct {
	RouteID       string // empty if the activity has no associated route
	RouteName     string // empty if the route is unnamed
	HasTimestamp  bool
	TimestampUnix int64
}

// cellKey identifies one grid cell by integer (row, col).
type cellKey struct {
	row, col int
}

// Cell is one non-empty grid cell (spec.md section 3, "Heatmap cell").
type Cell struct {
	Row, Col          int
	CenterLat         float64
	CenterLng         float64
	VisitCount        int
	NormalizedDensity float64
	RouteCounts       map[string]int
	RouteNames        map[string]string
	ActivityIDs       map[string]bool
	HasTimestamps     bool
	MinTimestamp      int64
	MaxTimestamp      int64
	IsCommonPath      bool
}

// Result is the full sparse heatmap grid plus the bookkeeping needed to
// answer queries against it (spec.md section 3, "Heatmap result").
type Result struct {
	Cells                 map[cellKey]*Cell
	Bounds                geo.Bounds
	CellSizeMeters        float64
	RowSpan, ColSpan      int
	MaxDensity            int
	TotalUniqueRoutes     int
	TotalUniqueActivities int
}

// Build runs the full ingest algorithm over signatures, consulting
// metaByActivity (keyed by activity id) for each signature's route and
// timestamp metadata (spec.md section 4.7 steps 1-4).
func Build(signatures []*routesig.RouteSignature, metaByActivity map[string]ActivityMeta, cfg config.HeatmapConfig) *Result {
	result := &Result{
		Cells:          make(map[cellKey]*Cell),
		CellSizeMeters: cfg.CellSizeMeters,
		Bounds:         geo.Bounds{MinLat: math.Inf(1), MaxLat: math.Inf(-1), MinLng: math.Inf(1), MaxLng: math.Inf(-1)},
	}

	var refLat float64
	haveRefLat := false

	routeSet := make(map[string]bool)
	activitySet := make(map[string]bool)

	for _, sig := range signatures {
		meta := metaByActivity[sig.ActivityID]
		for _, p := range sig.Points {
			if cfg.HasBounds && !clipBounds(cfg).Contains(p) {
				continue
			}
			if !haveRefLat {
				refLat = p.Lat
				haveRefLat = true
			}

			key := cellFor(p, refLat, cfg.CellSizeMeters)
			cell, ok := result.Cells[key]
			if !ok {
				cell = &Cell{
					Row: key.row, Col: key.col,
					CenterLat:   cellCenterLat(key.row, cfg.CellSizeMeters, refLat),
					CenterLng:   cellCenterLng(key.col, cfg.CellSizeMeters, refLat),
					RouteCounts: make(map[string]int),
					RouteNames:  make(map[string]string),
					ActivityIDs: make(map[string]bool),
				}
				result.Cells[key] = cell
			}

			cell.VisitCount++
			if !cell.ActivityIDs[sig.ActivityID] {
				cell.ActivityIDs[sig.ActivityID] = true
				activitySet[sig.ActivityID] = true
			}
			if meta.RouteID != "" {
				cell.RouteCounts[meta.RouteID]++
				if meta.RouteName != "" {
					cell.RouteNames[meta.RouteID] = meta.RouteName
				}
				routeSet[meta.RouteID] = true
			}
			if meta.HasTimestamp {
				foldTimestamp(cell, meta.TimestampUnix)
			}

			result.Bounds.MinLat = math.Min(result.Bounds.MinLat, p.Lat)
			result.Bounds.MaxLat = math.Max(result.Bounds.MaxLat, p.Lat)
			result.Bounds.MinLng = math.Min(result.Bounds.MinLng, p.Lng)
			result.Bounds.MaxLng = math.Max(result.Bounds.MaxLng, p.Lng)
		}
	}

	result.TotalUniqueRoutes = len(routeSet)
	result.TotalUniqueActivities = len(activitySet)

	maxCount := 0
	minRow, maxRow, minCol, maxCol := math.MaxInt32, math.MinInt32, math.MaxInt32, math.MinInt32
	for key, cell := range result.Cells {
		if cell.VisitCount > maxCount {
			maxCount = cell.VisitCount
		}
		cell.IsCommonPath = len(cell.RouteCounts) >= 2
		if key.row < minRow {
			minRow = key.row
		}
		if key.row > maxRow {
			maxRow = key.row
		}
		if key.col < minCol {
			minCol = key.col
		}
		if key.col > maxCol {
			maxCol = key.col
		}
	}
	result.MaxDensity = maxCount
	if len(result.Cells) > 0 {
		result.RowSpan = maxRow - minRow + 1
		result.ColSpan = maxCol - minCol + 1
		for _, cell := range result.Cells {
			cell.NormalizedDensity = float64(cell.VisitCount) / float64(maxCount)
		}
	}
	return result
}

func clipBounds(cfg config.HeatmapConfig) geo.Bounds {
	return geo.Bounds{MinLat: cfg.MinLat, MaxLat: cfg.MaxLat, MinLng: cfg.MinLng, MaxLng: cfg.MaxLng}
}

func foldTimestamp(cell *Cell, ts int64) {
	if !cell.HasTimestamps {
		cell.HasTimestamps = true
		cell.MinTimestamp = ts
		cell.MaxTimestamp = ts
		return
	}
	if ts < cell.MinTimestamp {
		cell.MinTimestamp = ts
	}
	if ts > cell.MaxTimestamp {
		cell.MaxTimestamp = ts
	}
}

func cellFor(p geo.Point, refLat, cellSizeMeters float64) cellKey {
	lngMPD := latMetersPerDegree * math.Cos(refLat*math.Pi/180)
	row := int(math.Floor(((p.Lat - refLat) * latMetersPerDegree) / cellSizeMeters))
	col := int(math.Floor((p.Lng * lngMPD) / cellSizeMeters))
	return cellKey{row: row, col: col}
}

func cellCenterLat(row int, cellSizeMeters, refLat float64) float64 {
	return refLat + (float64(row)+0.5)*cellSizeMeters/latMetersPerDegree
}

func cellCenterLng(col int, cellSizeMeters, refLat float64) float64 {
	lngMPD := latMetersPerDegree * math.Cos(refLat*math.Pi/180)
	return (float64(col)+0.5) * cellSizeMeters / lngMPD
}

// Query recomputes the (row, col) cell containing (lat, lng) using the
// result's own mean bounds latitude as the reference, and returns the cell
// plus its synthesized human label (spec.md section 4.7, Query).
func Query(result *Result, lat, lng, cellSize float64) (*Cell, string, bool) {
	refLat := (result.Bounds.MinLat + result.Bounds.MaxLat) / 2
	key := cellFor(geo.Point{Lat: lat, Lng: lng}, refLat, cellSize)
	cell, ok := result.Cells[key]
	if !ok {
		return nil, "", false
	}
	return cell, labelFor(cell), true
}

func labelFor(cell *Cell) string {
	routeCount := len(cell.RouteCounts)
	activityCount := len(cell.ActivityIDs)

	switch {
	case routeCount == 0 && activityCount == 1:
		return "Explored once"
	case routeCount == 0:
		return fmt.Sprintf("%d activities (no route)", activityCount)
	case routeCount == 1:
		routeID := soleRouteID(cell.RouteCounts)
		if name, ok := cell.RouteNames[routeID]; ok && name != "" {
			return fmt.Sprintf("%s (%dx)", name, cell.RouteCounts[routeID])
		}
		return fmt.Sprintf("Route (%d activities)", activityCount)
	default:
		return fmt.Sprintf("Common path (%d routes)", routeCount)
	}
}

func soleRouteID(routeCounts map[string]int) string {
	ids := make([]string, 0, len(routeCounts))
	for id := range routeCounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
