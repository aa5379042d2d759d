// Package sections implements the adaptive-consensus section detector: the
// pipeline that turns full GPS tracks into persistent "frequent section"
// records for physical road segments that many activities traverse in
// common (spec.md section 4.6). It is the largest subsystem in the
// module, built in five stages (pairwise overlap discovery, overlap
// clustering, medoid selection, consensus refinement, post-processing)
// plus a final per-activity trace extraction pass.
package sections

import (
	"github.com/banshee-data/trailmatch/internal/geo"
)

// ActivityTrack is one activity's full (unsimplified) GPS track, tagged
// with the sport it belongs to. Unlike a RouteSignature, the section
// detector works over the raw point sequence so consensus polylines stay
// faithful to real recordings.
type ActivityTrack struct {
	ActivityID string
	Sport      string
	Points     []geo.Point
}

// FullTrackOverlap is one candidate overlap between two full tracks,
// produced by stage A (spec.md section 4.6.1).
type FullTrackOverlap struct {
	ActivityA string
	ActivityB string
	ASlice    []geo.Point
	BSlice    []geo.Point
	Centroid  geo.Point
}

// overlapCluster accumulates the overlaps stage B judged to describe the
// same physical segment, plus the set of distinct activities involved
// (spec.md section 4.6.2).
type overlapCluster struct {
	overlaps    []FullTrackOverlap
	activityIDs map[string]bool
}

func newCluster(seed FullTrackOverlap) *overlapCluster {
	c := &overlapCluster{
		overlaps:    []FullTrackOverlap{seed},
		activityIDs: map[string]bool{seed.ActivityA: true, seed.ActivityB: true},
	}
	return c
}

func (c *overlapCluster) absorb(o FullTrackOverlap) {
	c.overlaps = append(c.overlaps, o)
	c.activityIDs[o.ActivityA] = true
	c.activityIDs[o.ActivityB] = true
}

// ActivityPortion records one activity's contribution to a section: the
// index range into its own full track, the geodesic length of that slice,
// and its traversal direction relative to the section's polyline.
type ActivityPortion struct {
	ActivityID string
	StartIdx   int
	EndIdx     int
	LengthM    float64
	Direction  string
}

// Section is a persistent, frequently traversed road segment (spec.md
// section 3, "Frequent section").
type Section struct {
	ID                       string
	Sport                    string
	Polyline                 []geo.Point
	RepresentativeActivityID string
	MemberActivityIDs        []string
	Portions                 []ActivityPortion
	RouteGroupIDs            []string
	VisitCount               int
	LengthM                  float64
	Density                  []uint32
	Confidence               float64
	ObservationCount         int
	AverageSpreadM           float64
}
