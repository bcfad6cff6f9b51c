package services

import (
	"context"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/ports"

	"go.uber.org/zap"
)

const (
	// FallbackIrradiance substitutes for a failed irradiance lookup (kWh/m²/day).
	FallbackIrradiance = 5.0
	// ElevationBatchSize bounds the number of points per elevation request.
	ElevationBatchSize = 100
)

// FetchIrradiance returns the mean irradiance at c, or FallbackIrradiance on any failure.
func FetchIrradiance(ctx context.Context, src ports.IrradianceSource, c domain.Coordinates, log *zap.Logger) float64 {
	v, err := src.MeanIrradiance(ctx, c)
	if err != nil {
		log.Warn("irradiance lookup failed, using fallback",
			zap.String("coord", c.Key()),
			zap.Float64("fallback", FallbackIrradiance),
			zap.Error(err),
		)
		return FallbackIrradiance
	}
	return v
}

// FetchElevations looks up points in batches of ElevationBatchSize and returns
// one elevation per point in input order. A failed batch contributes zeros.
// onBatch, if non-nil, is called with the number of points processed so far.
func FetchElevations(
	ctx context.Context,
	src ports.ElevationSource,
	points []domain.Coordinates,
	log *zap.Logger,
	onBatch func(processed int),
) []float64 {
	out := make([]float64, 0, len(points))

	for start := 0; start < len(points); start += ElevationBatchSize {
		end := min(start+ElevationBatchSize, len(points))
		batch := points[start:end]

		values, err := src.Elevations(ctx, batch)
		if err == nil && len(values) != len(batch) {
			log.Warn("elevation source returned wrong count",
				zap.Int("got", len(values)),
				zap.Int("want", len(batch)),
			)
			values = nil
		}
		if err != nil {
			log.Warn("elevation lookup failed, using zeros",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			values = nil
		}
		if values == nil {
			values = make([]float64, len(batch))
		}

		out = append(out, values...)

		if onBatch != nil {
			onBatch(end)
		}
	}

	return out
}
