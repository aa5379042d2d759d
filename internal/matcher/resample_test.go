package matcher

import (
	"testing"

	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/testutil"
)

func TestResampleKeepsEndpointsAndCount(t *testing.T) {
	pts := []geo.Point{
		{Lat: 51.50, Lng: -0.10},
		{Lat: 51.51, Lng: -0.11},
		{Lat: 51.52, Lng: -0.12},
	}
	out := resampleByArcLength(pts, 10)
	if len(out) != 10 {
		t.Fatalf("got %d points, want 10", len(out))
	}
	if out[0] != pts[0] {
		t.Error("expected first point to be preserved")
	}
	if out[len(out)-1] != pts[len(pts)-1] {
		t.Error("expected last point to be preserved")
	}
}

func TestResampleEvenlySpacedByArcLength(t *testing.T) {
	pts := []geo.Point{
		{Lat: 51.50, Lng: -0.10},
		{Lat: 51.60, Lng: -0.10},
	}
	out := resampleByArcLength(pts, 5)
	total := geo.PolylineLength(pts)
	want := total / 4
	for i := 1; i < len(out); i++ {
		got := geo.Haversine(out[i-1], out[i])
		testutil.AssertWithinTolerance(t, got, want, want*0.05)
	}
}

func TestResampleSinglePointRepeats(t *testing.T) {
	pts := []geo.Point{{Lat: 51.5, Lng: -0.1}}
	out := resampleByArcLength(pts, 4)
	if len(out) != 4 {
		t.Fatalf("got %d points, want 4", len(out))
	}
	for _, p := range out {
		if p != pts[0] {
			t.Error("expected every output point to equal the single input point")
		}
	}
}

func TestResampleHandlesDuplicatePoints(t *testing.T) {
	pts := []geo.Point{
		{Lat: 51.5, Lng: -0.1},
		{Lat: 51.5, Lng: -0.1},
		{Lat: 51.6, Lng: -0.1},
	}
	out := resampleByArcLength(pts, 5)
	if len(out) != 5 {
		t.Fatalf("got %d points, want 5", len(out))
	}
	if out[0] != pts[0] || out[len(out)-1] != pts[len(pts)-1] {
		t.Error("expected endpoints preserved despite zero-length segment")
	}
}
