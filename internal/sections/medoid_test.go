package sections

import (
	"testing"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
)

func TestSelectMedoidPicksCentralSlice(t *testing.T) {
	base := straightLine(51.50, -0.10, 20, 20)
	slightlyOff := straightLine(51.50, -0.10+0.00002, 20, 20)
	wayOff := straightLine(51.50, -0.10+0.002, 20, 20)

	c := newCluster(FullTrackOverlap{
		ActivityA: "a", ActivityB: "b",
		ASlice: base, BSlice: slightlyOff,
		Centroid: geo.ComputeCentroid(base),
	})
	c.absorb(FullTrackOverlap{
		ActivityA: "a", ActivityB: "c",
		ASlice: base, BSlice: wayOff,
		Centroid: geo.ComputeCentroid(base),
	})

	medoid := selectMedoid(c, config.DefaultSectionConfig())
	// The outlier slice (wayOff, from activity c) should never win; the
	// two closely-aligned slices (base, slightlyOff) are the plausible
	// medoid candidates.
	if medoid.activityID == "c" {
		t.Errorf("expected medoid to avoid the outlier slice, got activity %s", medoid.activityID)
	}
}

func TestSelectMedoidIdenticalSlicesReturnsUnresampledPoints(t *testing.T) {
	base := straightLine(51.50, -0.10, 20, 20)
	c := newCluster(FullTrackOverlap{
		// One overlap yields two identical candidate slices, so the
		// single-slice shortcut is not taken and AMD selection runs.
		ActivityA: "a", ActivityB: "a",
		ASlice: base, BSlice: base,
		Centroid: geo.ComputeCentroid(base),
	})
	medoid := selectMedoid(c, config.DefaultSectionConfig())
	if len(medoid.points) != len(base) {
		t.Errorf("got %d points, want %d", len(medoid.points), len(base))
	}
}
