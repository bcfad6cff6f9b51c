package services

import (
	"math"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/geo"
)

const (
	// ShadingRadiusKm is the neighborhood searched for taller terrain.
	ShadingRadiusKm = 2.0
	// MaxNeighborPenalty caps one obstruction's contribution.
	MaxNeighborPenalty = 0.1
	// MaxShadingPenalty caps the summed penalty (30% irradiance loss).
	MaxShadingPenalty = 0.3

	referenceAngle = math.Pi / 4
)

// Neighbor is a nearby point's elevation and its distance from the point being scored.
type Neighbor struct {
	ElevationM float64
	DistanceKm float64
}

// ShadingPenalty converts taller neighbors into a penalty in [0, MaxShadingPenalty].
// Each neighbor contributes in proportion to the obstruction angle atan2(rise, run),
// normalized by 45 degrees and capped at MaxNeighborPenalty.
func ShadingPenalty(elevationM float64, neighbors []Neighbor) float64 {
	penalty := 0.0

	for _, n := range neighbors {
		diff := n.ElevationM - elevationM
		if diff <= 0 {
			continue
		}

		angle := math.Atan2(diff, n.DistanceKm*1000)
		penalty += math.Min(MaxNeighborPenalty, angle/referenceAngle*MaxNeighborPenalty)
	}

	return math.Min(MaxShadingPenalty, penalty)
}

// neighborsOf collects every other point strictly within ShadingRadiusKm of points[i].
// Identity is by index, so coincident samples still count as neighbors.
func neighborsOf(i int, points []domain.Coordinates, elevations []float64) []Neighbor {
	var out []Neighbor
	for j, p := range points {
		if j == i {
			continue
		}
		d := geo.DistanceKm(points[i], p)
		if d < ShadingRadiusKm {
			out = append(out, Neighbor{ElevationM: elevations[j], DistanceKm: d})
		}
	}
	return out
}
