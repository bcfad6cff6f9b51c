package services

import (
	"slices"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/geo"
)

const (
	// MaxResults is the size of the final recommendation list.
	MaxResults = 5
	// MinSpacingKm is the minimum distance between any two recommendations.
	MinSpacingKm = 0.3
)

// Score is the shading-adjusted irradiance for one point.
func Score(irradiance, shadingPenalty float64) float64 {
	return irradiance * (1 - shadingPenalty)
}

// ScoreCandidates fills in a score for every point from one shared irradiance value
// and the per-point shading penalty. Output order matches input order.
func ScoreCandidates(points []domain.Coordinates, elevations []float64, irradiance float64) []domain.CandidatePoint {
	candidates := make([]domain.CandidatePoint, len(points))
	for i, p := range points {
		penalty := ShadingPenalty(elevations[i], neighborsOf(i, points, elevations))
		candidates[i] = domain.CandidatePoint{
			Coordinates: p,
			Elevation:   elevations[i],
			Score:       Score(irradiance, penalty),
		}
	}
	return candidates
}

// SelectDiverse ranks candidates by score and greedily keeps up to MaxResults
// of them that are all at least MinSpacingKm apart.
//
// Ties keep sampling order. The input slice is not modified.
func SelectDiverse(candidates []domain.CandidatePoint) []domain.SolarResult {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b domain.CandidatePoint) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	results := make([]domain.SolarResult, 0, MaxResults)
	for _, c := range sorted {
		if len(results) >= MaxResults {
			break
		}

		tooClose := false
		for _, r := range results {
			if geo.DistanceKm(c.Coordinates, r.Coordinates) < MinSpacingKm {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		results = append(results, domain.SolarResult{
			Rank:        len(results) + 1,
			Coordinates: c.Coordinates,
			KwhPerDay:   c.Score,
		})
	}

	return results
}
