package sections

import (
	"testing"

	"github.com/banshee-data/trailmatch/internal/config"
)

func TestExtractPortionsFindsFullOverlap(t *testing.T) {
	cfg := config.DefaultSectionConfig()
	polyline := straightLine(51.50, -0.10, 20, 20)
	tracksByID := map[string]ActivityTrack{
		"a": {ActivityID: "a", Points: polyline},
	}

	portions := extractPortions(polyline, []string{"a"}, tracksByID, cfg)
	if len(portions) != 1 {
		t.Fatalf("got %d portions, want 1", len(portions))
	}
	if portions[0].Direction != "same" {
		t.Errorf("got direction %v, want same", portions[0].Direction)
	}
}

func TestExtractPortionsLabelsReverseTraversal(t *testing.T) {
	cfg := config.DefaultSectionConfig()
	polyline := straightLine(51.50, -0.10, 20, 20)
	reversedTrack := reverseSlice(polyline)
	tracksByID := map[string]ActivityTrack{
		"a": {ActivityID: "a", Points: reversedTrack},
	}

	portions := extractPortions(polyline, []string{"a"}, tracksByID, cfg)
	if len(portions) != 1 {
		t.Fatalf("got %d portions, want 1", len(portions))
	}
	if portions[0].Direction != "reverse" {
		t.Errorf("got direction %v, want reverse", portions[0].Direction)
	}
}

func TestExtractPortionsSkipsUnknownActivity(t *testing.T) {
	cfg := config.DefaultSectionConfig()
	polyline := straightLine(51.50, -0.10, 20, 20)
	portions := extractPortions(polyline, []string{"ghost"}, map[string]ActivityTrack{}, cfg)
	if len(portions) != 0 {
		t.Errorf("got %d portions, want 0 for an activity absent from tracksByID", len(portions))
	}
}
