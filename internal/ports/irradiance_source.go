package ports

import (
	"context"
	"solar-siting-service/internal/domain"
)

// Contract for retrieving long-term solar irradiance at a location.
type IrradianceSource interface {
	// Return the mean daily irradiance at c in kWh/m²/day.
	MeanIrradiance(ctx context.Context, c domain.Coordinates) (float64, error)
}

// Port: a store for irradiance lookups keyed by coordinate.
type IrradianceCache interface {
	// Return the cached value and whether it was present.
	Get(ctx context.Context, c domain.Coordinates) (float64, bool, error)
	Put(ctx context.Context, c domain.Coordinates, kwh float64) error
}
