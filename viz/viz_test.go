package viz

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/heatmap"
	"github.com/banshee-data/trailmatch/internal/routesig"
	"github.com/banshee-data/trailmatch/internal/sections"
)

func mustVizSig(t *testing.T, id string, pts []geo.Point) *routesig.RouteSignature {
	t.Helper()
	sig, err := routesig.Make(id, pts, config.DefaultMatchConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sig
}

func TestRenderHeatmapHTMLProducesNonEmptyDocument(t *testing.T) {
	pts := []geo.Point{{Lat: 51.50, Lng: -0.10}, {Lat: 51.501, Lng: -0.101}, {Lat: 51.502, Lng: -0.102}}
	sig := mustVizSig(t, "a", pts)
	result := heatmap.Build([]*routesig.RouteSignature{sig}, nil, config.DefaultHeatmapConfig())

	var buf bytes.Buffer
	if err := RenderHeatmapHTML(result, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a non-empty HTML document")
	}
}

func TestRenderHeatmapHTMLHandlesEmptyResult(t *testing.T) {
	result := heatmap.Build(nil, nil, config.DefaultHeatmapConfig())
	var buf bytes.Buffer
	if err := RenderHeatmapHTML(result, &buf); err != nil {
		t.Fatalf("unexpected error rendering an empty heatmap: %v", err)
	}
}

func TestPolylinesPNGWritesFile(t *testing.T) {
	lines := []NamedPolyline{
		{Label: "a", Points: []geo.Point{{Lat: 51.50, Lng: -0.10}, {Lat: 51.501, Lng: -0.101}}},
		{Label: "b", Points: []geo.Point{{Lat: 51.50, Lng: -0.10}, {Lat: 51.5005, Lng: -0.1005}}},
	}
	path := filepath.Join(t.TempDir(), "routes.png")
	if err := PolylinesPNG("test routes", lines, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPolylinesForSectionIncludesConsensusAndMembers(t *testing.T) {
	section := sections.Section{
		Polyline: []geo.Point{{Lat: 51.50, Lng: -0.10}, {Lat: 51.501, Lng: -0.101}},
		Portions: []sections.ActivityPortion{
			{ActivityID: "a", StartIdx: 0, EndIdx: 1, Direction: "same"},
		},
	}
	tracksByID := map[string]sections.ActivityTrack{
		"a": {ActivityID: "a", Points: []geo.Point{{Lat: 51.50, Lng: -0.10}, {Lat: 51.501, Lng: -0.101}}},
	}

	lines := PolylinesForSection(section, tracksByID)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (consensus + one member)", len(lines))
	}
	if lines[0].Label != "consensus" {
		t.Errorf("got first label %q, want %q", lines[0].Label, "consensus")
	}
}

func TestPolylinesForGroupSkipsUnknownActivity(t *testing.T) {
	pts := []geo.Point{{Lat: 51.50, Lng: -0.10}, {Lat: 51.501, Lng: -0.101}}
	sig := mustVizSig(t, "a", pts)
	signatures := map[string]*routesig.RouteSignature{"a": sig}

	lines := PolylinesForGroup(signatures, []string{"a", "missing"})
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (unknown activity skipped)", len(lines))
	}
}
