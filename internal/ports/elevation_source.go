package ports

import (
	"context"
	"solar-siting-service/internal/domain"
)

// Contract for retrieving ground elevation for a batch of points.
type ElevationSource interface {
	// Return one elevation in meters per point, in input order.
	Elevations(ctx context.Context, points []domain.Coordinates) ([]float64, error)
}

// Port: a store for elevation lookups keyed by domain.Coordinates.Key.
type ElevationCache interface {
	// Fetch cached elevations; keys absent from the result are misses.
	GetMany(ctx context.Context, keys []string) (map[string]float64, error)
	// Store key -> elevation mappings.
	PutMany(ctx context.Context, elevations map[string]float64) error
}
