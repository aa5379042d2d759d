package sections

import (
	"testing"

	"github.com/banshee-data/trailmatch/internal/config"
)

// TestDetectSectionsCommonStraight mirrors the spec's S5 scenario: several
// tracks share a common 600 m straight, most of them tagged Run and a
// couple tagged Ride. detect_sections should surface at least one section
// whose length falls in [min_section_length, max_section_length], whose
// visit count is at least 3, and whose members include the Run tracks.
func TestDetectSectionsCommonStraight(t *testing.T) {
	cfg := config.DefaultSectionConfig()

	var tracks []ActivityTrack
	runIDs := map[string]bool{}
	for i := 0; i < 10; i++ {
		sport := "Run"
		id := "run-" + string(rune('a'+i))
		if i >= 7 {
			sport = "Ride"
			id = "ride-" + string(rune('a'+i))
		} else {
			runIDs[id] = true
		}
		// Small per-track lateral jitter within proximity_threshold so the
		// tracks are near-identical but not pixel-identical.
		jitter := float64(i%3) * 0.00002
		tracks = append(tracks, ActivityTrack{
			ActivityID: id,
			Sport:      sport,
			Points:     straightLine(51.50, -0.10+jitter, 30, 20),
		})
	}

	sections := DetectSections(tracks, cfg, nil)
	if len(sections) == 0 {
		t.Fatal("expected at least one detected section")
	}

	var found bool
	for _, s := range sections {
		if s.LengthM < 200 || s.LengthM > 5000 {
			continue
		}
		if s.VisitCount < 3 {
			continue
		}
		runMembers := 0
		for _, m := range s.MemberActivityIDs {
			if runIDs[m] {
				runMembers++
			}
		}
		if runMembers >= 3 {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected a section in [200m, 5000m] with >=3 visits including the Run tracks, got %+v", sections)
	}
}

func TestDetectSectionsEmptyInputYieldsNoSections(t *testing.T) {
	cfg := config.DefaultSectionConfig()
	sections := DetectSections(nil, cfg, nil)
	if len(sections) != 0 {
		t.Errorf("got %d sections, want 0 for empty input", len(sections))
	}
}

func TestDetectSectionsBelowMinActivitiesYieldsNoSections(t *testing.T) {
	cfg := config.DefaultSectionConfig()
	tracks := []ActivityTrack{
		{ActivityID: "a", Sport: "Run", Points: straightLine(51.50, -0.10, 30, 20)},
		{ActivityID: "b", Sport: "Run", Points: straightLine(51.50, -0.10, 30, 20)},
	}
	sections := DetectSections(tracks, cfg, nil)
	if len(sections) != 0 {
		t.Errorf("got %d sections, want 0 below min_activities", len(sections))
	}
}
