// Package spatialindex wraps a 2-D R-tree keyed by (lat, lng) in degrees,
// the spatial-index convention shared by the matcher, grouper, and section
// detector (spec.md section 4.2). Build inserts the entries one at a time;
// the tree is not bulk-loaded.
//
// The tree is built once per batch and is immutable afterwards, so a
// single *Index is safe to query concurrently from multiple goroutines —
// this is what lets the grouper and section detector fan pairwise
// comparisons out across a worker pool while sharing one index per batch.
//
// Distances used internally by the R-tree (nearest-neighbor ranking,
// envelope tests) are in squared-degree space, not meters. This is a
// deliberate, conservative prefilter: callers convert a meter threshold
// via SquaredDegreeThreshold and must re-check any acceptance decision in
// true haversine meters downstream. Do not treat the degree prefilter as
// tight — see spec.md section 9.
package spatialindex

import (
	"github.com/dhconnelly/rtreego"

	"github.com/banshee-data/trailmatch/internal/geo"
)

const (
	dimensions  = 2
	minChildren = 2
	maxChildren = 8

	// pointEpsilon turns a degenerate point into the minimal non-zero
	// rectangle rtreego requires for indexing.
	pointEpsilon = 1e-9
	minRectSpan  = 1e-9
)

// Entry is one indexed point, carrying an opaque payload the caller
// type-asserts back out of query results (e.g. an activity id, or a
// signature index).
type Entry struct {
	Point   geo.Point
	Payload any
}

type entryItem struct {
	entry Entry
	rect  *rtreego.Rect
}

func (e *entryItem) Bounds() *rtreego.Rect { return e.rect }

// BoundsEntry is one indexed bounding box, carrying an opaque payload the
// caller type-asserts back out of query results.
type BoundsEntry struct {
	Bounds  geo.Bounds
	Payload any
}

type boundsItem struct {
	entry BoundsEntry
	rect  *rtreego.Rect
}

func (e *boundsItem) Bounds() *rtreego.Rect { return e.rect }

// Index is a read-only-after-construction R-tree over a batch of Entries or
// BoundsEntries. An Index built with Build holds point entries and must be
// queried with NearestNeighbor(s)/SearchEnvelope; one built with BuildBounds
// holds rectangle entries and must be queried with SearchOverlapping.
type Index struct {
	tree *rtreego.Rtree
}

// Build constructs an Index over entries in one pass. Each entry's rect is
// prepared independently before insertion, matching the prepare-then-load
// shape of a bulk load even though rtreego itself inserts one at a time.
func Build(entries []Entry) *Index {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	for _, e := range entries {
		p := rtreego.Point{e.Point.Lat, e.Point.Lng}
		tree.Insert(&entryItem{entry: e, rect: p.ToRect(pointEpsilon)})
	}
	return &Index{tree: tree}
}

// BuildBounds constructs an Index over each entry's own bounding box,
// rather than a single representative point, for the envelope-intersection
// candidate queries spec.md section 4.2 step 1 describes ("build an R-tree
// of per-signature bounding boxes").
func BuildBounds(entries []BoundsEntry) *Index {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	for _, e := range entries {
		rect := boundsRect(e.Bounds)
		if rect == nil {
			continue
		}
		tree.Insert(&boundsItem{entry: e, rect: rect})
	}
	return &Index{tree: tree}
}

func boundsRect(b geo.Bounds) *rtreego.Rect {
	latSpan := maxFloat(b.MaxLat-b.MinLat, minRectSpan)
	lngSpan := maxFloat(b.MaxLng-b.MinLng, minRectSpan)
	rect, err := rtreego.NewRect(rtreego.Point{b.MinLat, b.MinLng}, []float64{latSpan, lngSpan})
	if err != nil {
		return nil
	}
	return rect
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	if idx == nil || idx.tree == nil {
		return 0
	}
	return idx.tree.Size()
}

// NearestNeighbor returns the single closest entry to p, or false if the
// index is empty.
func (idx *Index) NearestNeighbor(p geo.Point) (Entry, bool) {
	if idx.Len() == 0 {
		return Entry{}, false
	}
	results := idx.tree.NearestNeighbors(1, rtreego.Point{p.Lat, p.Lng})
	if len(results) == 0 || results[0] == nil {
		return Entry{}, false
	}
	return results[0].(*entryItem).entry, true
}

// NearestNeighbors returns up to k closest entries to p, nearest first.
func (idx *Index) NearestNeighbors(k int, p geo.Point) []Entry {
	if idx.Len() == 0 || k <= 0 {
		return nil
	}
	results := idx.tree.NearestNeighbors(k, rtreego.Point{p.Lat, p.Lng})
	out := make([]Entry, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, r.(*entryItem).entry)
	}
	return out
}

// SearchEnvelope returns every entry whose point falls within b.
func (idx *Index) SearchEnvelope(b geo.Bounds) []Entry {
	if idx.Len() == 0 {
		return nil
	}
	rect := boundsRect(b)
	if rect == nil {
		return nil
	}
	results := idx.tree.SearchIntersect(rect)
	out := make([]Entry, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, r.(*entryItem).entry)
	}
	return out
}

// SearchOverlapping returns every bounds entry (indexed via BuildBounds)
// whose own rectangle intersects b, rather than a single representative
// point falling inside b.
func (idx *Index) SearchOverlapping(b geo.Bounds) []BoundsEntry {
	if idx.Len() == 0 {
		return nil
	}
	rect := boundsRect(b)
	if rect == nil {
		return nil
	}
	results := idx.tree.SearchIntersect(rect)
	out := make([]BoundsEntry, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, r.(*boundsItem).entry)
	}
	return out
}

// SquaredDegreeDistance returns the squared Euclidean distance between a
// and b in degree space (not meters). Used to rank/threshold R-tree query
// results before re-checking acceptance in true haversine meters.
func SquaredDegreeDistance(a, b geo.Point) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}

// SquaredDegreeThreshold converts a meter threshold to the conservative
// squared-degree threshold used for R-tree prefiltering: (meters/111000)^2.
func SquaredDegreeThreshold(meters float64) float64 {
	d := meters / 111000.0
	return d * d
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
