package domain

import (
	"fmt"
	"math"
)

// AnalysisRequest describes one siting run. It is never persisted.
type AnalysisRequest struct {
	Center   Coordinates
	RadiusKm float64
}

func (r AnalysisRequest) Validate() error {
	if err := r.Center.Validate(); err != nil {
		return fmt.Errorf("center: %w", err)
	}
	if math.IsNaN(r.RadiusKm) || math.IsInf(r.RadiusKm, 0) || r.RadiusKm <= 0 {
		return fmt.Errorf("%w: radius %v km must be a positive number", ErrInvalidArgument, r.RadiusKm)
	}
	return nil
}

// CandidatePoint is a sampled coordinate under evaluation.
// Elevation and Score are filled in by successive pipeline stages.
type CandidatePoint struct {
	Coordinates Coordinates
	Elevation   float64
	Score       float64
}

// SolarResult is one ranked recommendation. Rank starts at 1 (best).
type SolarResult struct {
	Rank        int
	Coordinates Coordinates
	KwhPerDay   float64
}
