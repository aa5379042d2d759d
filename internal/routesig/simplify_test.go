package routesig

import (
	"testing"

	"github.com/banshee-data/trailmatch/internal/geo"
)

func TestDouglasPeuckerKeepsEndpoints(t *testing.T) {
	pts := []geo.Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 0, Lng: 2},
	}
	out := douglasPeucker(pts, 0.01)
	if out[0] != pts[0] || out[len(out)-1] != pts[len(pts)-1] {
		t.Fatal("expected endpoints to be kept")
	}
}

func TestDouglasPeuckerDropsCollinearPoints(t *testing.T) {
	// All points lie on the same straight line; the middle one should be
	// dropped at any positive tolerance.
	pts := []geo.Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 0, Lng: 2},
	}
	out := douglasPeucker(pts, 0.001)
	if len(out) != 2 {
		t.Fatalf("got %d points, want 2 (collinear middle point dropped)", len(out))
	}
}

func TestDouglasPeuckerKeepsSharpCorner(t *testing.T) {
	pts := []geo.Point{
		{Lat: 0, Lng: 0},
		{Lat: 1, Lng: 0}, // sharp corner, far from the chord
		{Lat: 0, Lng: 2},
	}
	out := douglasPeucker(pts, 0.001)
	if len(out) != 3 {
		t.Fatalf("got %d points, want 3 (corner point kept)", len(out))
	}
}

func TestDouglasPeuckerShortInputPassthrough(t *testing.T) {
	pts := []geo.Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	out := douglasPeucker(pts, 0.001)
	if len(out) != 2 {
		t.Fatalf("got %d points, want 2", len(out))
	}
}

func TestUniformSubsampleKeepsEndpointsAndCount(t *testing.T) {
	pts := make([]geo.Point, 10)
	for i := range pts {
		pts[i] = geo.Point{Lat: float64(i), Lng: float64(i)}
	}
	out := uniformSubsample(pts, 4)
	if len(out) != 4 {
		t.Fatalf("got %d points, want 4", len(out))
	}
	if out[0] != pts[0] || out[3] != pts[9] {
		t.Error("expected first/last points to be preserved")
	}
}

func TestUniformSubsampleNoOpWhenAlreadySmall(t *testing.T) {
	pts := []geo.Point{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	out := uniformSubsample(pts, 10)
	if len(out) != 2 {
		t.Fatalf("got %d points, want 2", len(out))
	}
}
