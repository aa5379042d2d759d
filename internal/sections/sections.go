package sections

import (
	"fmt"
	"sort"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
)

// DetectSections runs the full stage A-E pipeline plus activity trace
// extraction over tracks, grouped by sport, producing the final list of
// frequent sections sorted by descending visit count (spec.md section
// 4.6). routeGroupIDsForActivity, when non-nil, attaches the route group
// ids a section's members belong to.
func DetectSections(tracks []ActivityTrack, cfg config.SectionConfig, routeGroupIDsForActivity map[string][]string) []Section {
	bySport := make(map[string][]ActivityTrack)
	for _, t := range tracks {
		bySport[t.Sport] = append(bySport[t.Sport], t)
	}

	var sports []string
	for sport := range bySport {
		sports = append(sports, sport)
	}
	sort.Strings(sports)

	var all []Section
	sectionCounter := 0
	for _, sport := range sports {
		sportTracks := bySport[sport]
		tracksByID := make(map[string]ActivityTrack, len(sportTracks))
		for _, t := range sportTracks {
			tracksByID[t.ActivityID] = t
		}

		candidates := detectSportSections(sportTracks, tracksByID, sport, cfg)
		for _, c := range candidates {
			id := fmt.Sprintf("%s-%d", sport, sectionCounter)
			sectionCounter++

			sec := Section{
				ID:                       id,
				Sport:                    sport,
				Polyline:                 c.polyline,
				RepresentativeActivityID: c.representativeActivityID,
				MemberActivityIDs:        c.memberActivityIDs,
				VisitCount:               c.visitCount,
				LengthM:                  c.lengthM(),
				Density:                  c.density,
				Confidence:               c.confidence,
				ObservationCount:         c.observationCount,
				AverageSpreadM:           c.averageSpreadM,
			}
			sec.Portions = extractPortions(sec.Polyline, c.memberActivityIDs, tracksByID, cfg)
			if routeGroupIDsForActivity != nil {
				sec.RouteGroupIDs = distinctRouteGroups(c.memberActivityIDs, routeGroupIDsForActivity)
			}
			all = append(all, sec)
		}
		// Deliberately re-bases the per-sport counter off the running
		// total rather than len(candidates): ids are non-contiguous once
		// more than one sport is processed. Callers must treat ids as
		// opaque, never as a dense index.
		sectionCounter += len(all)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].VisitCount > all[j].VisitCount
	})
	return all
}

// detectSportSections runs stages A-E for one sport's tracks.
func detectSportSections(tracks []ActivityTrack, tracksByID map[string]ActivityTrack, sport string, cfg config.SectionConfig) []candidateSection {
	overlaps := discoverOverlaps(tracks, cfg)
	if len(overlaps) == 0 {
		return nil
	}

	clusters := clusterOverlaps(overlaps, cfg)
	if len(clusters) == 0 {
		return nil
	}

	var candidates []candidateSection
	for _, cl := range clusters {
		medoid := selectMedoid(cl, cfg)
		// max_section_length is checked against the medoid's own length,
		// not the consensus length: consensus refinement can still extend
		// the polyline past the cap without triggering a re-check. A
		// medoid already over the cap is dropped outright.
		if geo.PolylineLength(medoid.points) > cfg.MaxSectionLengthMeters {
			continue
		}
		refined := refineConsensus(medoid.points, tracksByID, cl.activityIDs, cfg)

		members := make([]string, 0, len(cl.activityIDs))
		for id := range cl.activityIDs {
			members = append(members, id)
		}
		sort.Strings(members)

		candidates = append(candidates, candidateSection{
			sport:                    sport,
			polyline:                 refined.polyline,
			density:                  refined.density,
			representativeActivityID: medoid.activityID,
			memberActivityIDs:        members,
			visitCount:               len(members),
			confidence:               refined.confidence,
			observationCount:         refined.observationCount,
			averageSpreadM:           refined.averageSpreadM,
		})
	}

	var folded []candidateSection
	for _, c := range candidates {
		folded = append(folded, foldSplit(c, cfg)...)
	}

	merged := nearbyMerge(folded, cfg)
	deduped := containmentDedup(merged, cfg)

	var final []candidateSection
	for _, c := range deduped {
		final = append(final, c)
		final = append(final, densitySplit(c, tracksByID, cfg)...)
	}
	return final
}

func distinctRouteGroups(activityIDs []string, routeGroupIDsForActivity map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range activityIDs {
		for _, gid := range routeGroupIDsForActivity[id] {
			if !seen[gid] {
				seen[gid] = true
				out = append(out, gid)
			}
		}
	}
	sort.Strings(out)
	return out
}
