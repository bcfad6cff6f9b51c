package dto

import "solar-siting-service/internal/domain"

type CoordinatesJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type AnalysisRequest struct {
	Center   CoordinatesJSON `json:"center"`
	RadiusKm float64         `json:"radius_km"`
}

type SolarResultResponse struct {
	Rank        int             `json:"rank"`
	Coordinates CoordinatesJSON `json:"coordinates"`
	KwhPerDay   float64         `json:"kwh_per_day"`
}

type AnalysisResponse struct {
	RunID   string                `json:"run_id"`
	Results []SolarResultResponse `json:"results"`
}

type ProgressResponse struct {
	RunID   string `json:"run_id"`
	Percent int    `json:"percent"`
}

// NewAnalysisResponse maps ranked results to their wire shape.
func NewAnalysisResponse(runID string, results []domain.SolarResult) AnalysisResponse {
	res := AnalysisResponse{
		RunID:   runID,
		Results: make([]SolarResultResponse, 0, len(results)),
	}
	for _, r := range results {
		res.Results = append(res.Results, SolarResultResponse{
			Rank: r.Rank,
			Coordinates: CoordinatesJSON{
				Lat: r.Coordinates.Lat,
				Lng: r.Coordinates.Lng,
			},
			KwhPerDay: r.KwhPerDay,
		})
	}
	return res
}
