package sections

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/spatialindex"
)

// contributorEpsilon keeps the inverse-distance weight finite when a
// contributor lands exactly on the medoid point (spec.md section 4.6.4
// step 3).
const contributorEpsilon = 1.0

// consensusResult is the refined polyline plus the aggregate metrics
// derived from it.
type consensusResult struct {
	polyline         []geo.Point
	density          []uint32
	observationCount int
	averageSpreadM   float64
	confidence       float64
}

// refineConsensus implements stage D: for each medoid point, pull in the
// nearest point from every participating activity within
// cfg.ProximityThresholdMeters, and replace the point with their
// inverse-distance-weighted centroid (spec.md section 4.6.4).
func refineConsensus(medoid []geo.Point, tracksByID map[string]ActivityTrack, activityIDs map[string]bool, cfg config.SectionConfig) consensusResult {
	indices := buildActivityIndices(tracksByID, activityIDs)

	polyline := make([]geo.Point, len(medoid))
	density := make([]uint32, len(medoid))
	perPointMeanDistance := make([]float64, len(medoid))

	for i, p := range medoid {
		type contribution struct {
			point geo.Point
			dist  float64
		}
		var contributions []contribution

		for _, idx := range indices {
			nearest, ok := idx.NearestNeighbor(p)
			if !ok {
				continue
			}
			d := geo.Haversine(p, nearest.Point)
			if d <= cfg.ProximityThresholdMeters {
				contributions = append(contributions, contribution{point: nearest.Point, dist: d})
			}
		}

		if len(contributions) == 0 {
			polyline[i] = p
			density[i] = 0
			perPointMeanDistance[i] = 0
			continue
		}

		var weighted r2.Vec
		var sumWeight, sumDist float64
		dists := make([]float64, len(contributions))
		for j, c := range contributions {
			w := 1 / (c.dist + contributorEpsilon)
			weighted = r2.Add(weighted, r2.Scale(w, r2.Vec{X: c.point.Lat, Y: c.point.Lng}))
			sumWeight += w
			sumDist += c.dist
			dists[j] = c.dist
		}
		centroid := r2.Scale(1/sumWeight, weighted)
		polyline[i] = geo.Point{Lat: centroid.X, Lng: centroid.Y}
		density[i] = uint32(len(contributions))
		perPointMeanDistance[i] = stat.Mean(dists, nil)
	}

	observationCount := len(activityIDs)
	averageSpread := stat.Mean(perPointMeanDistance, nil)
	confidence := computeConfidence(observationCount, averageSpread, cfg.ProximityThresholdMeters)

	return consensusResult{
		polyline:         polyline,
		density:          density,
		observationCount: observationCount,
		averageSpreadM:   averageSpread,
		confidence:       confidence,
	}
}

func buildActivityIndices(tracksByID map[string]ActivityTrack, activityIDs map[string]bool) []*spatialindex.Index {
	indices := make([]*spatialindex.Index, 0, len(activityIDs))
	for id := range activityIDs {
		track, ok := tracksByID[id]
		if !ok {
			continue
		}
		entries := make([]spatialindex.Entry, len(track.Points))
		for i, p := range track.Points {
			entries[i] = spatialindex.Entry{Point: p, Payload: i}
		}
		indices = append(indices, spatialindex.Build(entries))
	}
	return indices
}

// computeConfidence implements the aggregate confidence formula from
// spec.md section 4.6.4: min(1, 0.5*min(obs,10)/10 + 0.5*(1 -
// avg_spread/proximity_threshold)).
func computeConfidence(observationCount int, averageSpread, proximityThreshold float64) float64 {
	obsTerm := 0.5 * minInt(observationCount, 10) / 10
	spreadTerm := 0.5 * (1 - averageSpread/proximityThreshold)
	c := obsTerm + spreadTerm
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func minInt(a, b int) float64 {
	if a < b {
		return float64(a)
	}
	return float64(b)
}
