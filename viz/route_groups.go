package viz

import (
	"github.com/banshee-data/trailmatch/internal/routesig"
	"github.com/banshee-data/trailmatch/internal/sections"
)

// PolylinesForGroup builds one NamedPolyline per signature in a route
// group, suitable for passing to PolylinesPNG.
func PolylinesForGroup(signatures map[string]*routesig.RouteSignature, activityIDs []string) []NamedPolyline {
	lines := make([]NamedPolyline, 0, len(activityIDs))
	for _, id := range activityIDs {
		sig, ok := signatures[id]
		if !ok {
			continue
		}
		lines = append(lines, NamedPolyline{Label: id, Points: sig.Points})
	}
	return lines
}

// PolylinesForSection builds the consensus polyline plus one line per
// member activity's contributing portion, suitable for passing to
// PolylinesPNG to inspect how well a section's consensus tracks its
// members.
func PolylinesForSection(section sections.Section, tracksByID map[string]sections.ActivityTrack) []NamedPolyline {
	lines := make([]NamedPolyline, 0, len(section.Portions)+1)
	lines = append(lines, NamedPolyline{Label: "consensus", Points: section.Polyline})
	for _, portion := range section.Portions {
		track, ok := tracksByID[portion.ActivityID]
		if !ok || portion.StartIdx < 0 || portion.EndIdx >= len(track.Points) || portion.StartIdx > portion.EndIdx {
			continue
		}
		lines = append(lines, NamedPolyline{
			Label:  portion.ActivityID,
			Points: track.Points[portion.StartIdx : portion.EndIdx+1],
		})
	}
	return lines
}
