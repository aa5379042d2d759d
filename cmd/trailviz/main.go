// Command trailviz renders a heatmap or a section's consensus polyline to
// a file for visual debugging. It has no bearing on matching, grouping, or
// section-detection correctness; it exists purely so output of those
// packages can be eyeballed, the way the teacher pairs its tracking core
// with a standalone visualiser tool.
//
// Usage:
//
//	go run ./cmd/trailviz -mode heatmap -tracks tracks.json -out heatmap.html
//	go run ./cmd/trailviz -mode sections -tracks tracks.json -out sections.png
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/heatmap"
	"github.com/banshee-data/trailmatch/internal/routesig"
	"github.com/banshee-data/trailmatch/internal/sections"
	"github.com/banshee-data/trailmatch/viz"
)

// inputTrack is the JSON shape of one record in the -tracks file: an
// activity id, its sport, and a raw lat/lng point sequence.
type inputTrack struct {
	ActivityID string      `json:"activity_id"`
	Sport      string      `json:"sport"`
	Points     []geo.Point `json:"points"`
}

func main() {
	mode := flag.String("mode", "heatmap", "Render mode: heatmap, sections")
	tracksPath := flag.String("tracks", "", "Path to a JSON array of tracks (required)")
	outPath := flag.String("out", "", "Output file path (required)")
	flag.Parse()

	if *tracksPath == "" || *outPath == "" {
		log.Fatal("Error: -tracks and -out are both required")
	}

	tracks, err := loadTracks(*tracksPath)
	if err != nil {
		log.Fatalf("Failed to load tracks: %v", err)
	}

	switch *mode {
	case "heatmap":
		runHeatmap(tracks, *outPath)
	case "sections":
		runSections(tracks, *outPath)
	default:
		log.Fatalf("Unknown mode: %s (expected: heatmap, sections)", *mode)
	}
}

func loadTracks(path string) ([]inputTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tracks []inputTrack
	if err := json.NewDecoder(f).Decode(&tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

func runHeatmap(tracks []inputTrack, outPath string) {
	log.Printf("Building heatmap from %d tracks", len(tracks))

	cfg := config.DefaultMatchConfig()
	signatures := make([]*routesig.RouteSignature, 0, len(tracks))
	for _, t := range tracks {
		sig, err := routesig.Make(t.ActivityID, t.Points, cfg)
		if err != nil {
			log.Printf("Skipping %s: %v", t.ActivityID, err)
			continue
		}
		signatures = append(signatures, sig)
	}

	result := heatmap.Build(signatures, nil, config.DefaultHeatmapConfig())
	log.Printf("Heatmap has %d cells, max density %d", len(result.Cells), result.MaxDensity)

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", outPath, err)
	}
	defer out.Close()

	if err := viz.RenderHeatmapHTML(result, out); err != nil {
		log.Fatalf("Failed to render heatmap: %v", err)
	}
	log.Printf("Wrote %s", outPath)
}

func runSections(tracks []inputTrack, outPath string) {
	log.Printf("Detecting sections from %d tracks", len(tracks))

	activityTracks := make([]sections.ActivityTrack, 0, len(tracks))
	for _, t := range tracks {
		activityTracks = append(activityTracks, sections.ActivityTrack{
			ActivityID: t.ActivityID, Sport: t.Sport, Points: t.Points,
		})
	}

	detected := sections.DetectSections(activityTracks, config.DefaultSectionConfig(), nil)
	log.Printf("Detected %d sections", len(detected))
	if len(detected) == 0 {
		log.Fatal("No sections to render")
	}

	tracksByID := make(map[string]sections.ActivityTrack, len(activityTracks))
	for _, t := range activityTracks {
		tracksByID[t.ActivityID] = t
	}

	best := detected[0] // sections.DetectSections sorts by descending visit count
	lines := viz.PolylinesForSection(best, tracksByID)
	if err := viz.PolylinesPNG("Section "+best.ID, lines, outPath); err != nil {
		log.Fatalf("Failed to render section: %v", err)
	}
	log.Printf("Wrote %s (section %s, %d members)", outPath, best.ID, len(best.MemberActivityIDs))
}
