package services

import (
	"context"
	"errors"
	"fmt"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/platform/obs"
	"solar-siting-service/internal/ports"

	"go.uber.org/zap"
)

// Analyzer runs the siting pipeline against two data sources.
// It holds no per-run state and is safe for concurrent use when its sources are.
type Analyzer struct {
	Irradiance ports.IrradianceSource
	Elevation  ports.ElevationSource
	Logger     *zap.Logger
}

func NewAnalyzer(irr ports.IrradianceSource, elev ports.ElevationSource, log *zap.Logger) (*Analyzer, error) {
	if irr == nil {
		return nil, errors.New("new analyzer: irradiance source is nil")
	}
	if elev == nil {
		return nil, errors.New("new analyzer: elevation source is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{Irradiance: irr, Elevation: elev, Logger: log}, nil
}

// Analyze returns up to MaxResults recommendations for the disc described by req,
// best first.
//
// Lookup failures never fail the run; they are replaced by fallback values.
// The only errors are invalid input (wrapping domain.ErrInvalidArgument) and
// cancellation of ctx by the caller, e.g. when a newer run supersedes this one.
func (a *Analyzer) Analyze(
	ctx context.Context,
	req domain.AnalysisRequest,
	onProgress ProgressFunc,
) (_ []domain.SolarResult, err error) {
	log := a.Logger
	if log == nil {
		log = zap.NewNop()
	}
	defer obs.Time(ctx, log, "analyzer.Analyze")(&err)

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	progress := &progressTracker{fn: onProgress}
	progress.report(ProgressStarted)

	points := SamplePoints(req.Center, req.RadiusKm)
	progress.report(ProgressSampled)

	irradiance := FetchIrradiance(ctx, a.Irradiance, req.Center, log)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	progress.report(ProgressIrradiance)

	elevations := FetchElevations(ctx, a.Elevation, points, log, func(processed int) {
		progress.report(elevationProgress(processed, len(points)))
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	candidates := ScoreCandidates(points, elevations, irradiance)
	progress.report(ProgressScored)

	results := SelectDiverse(candidates)
	progress.report(ProgressDone)

	log.Debug("analysis complete",
		zap.String("center", req.Center.Key()),
		zap.Float64("radius_km", req.RadiusKm),
		zap.Int("candidates", len(candidates)),
		zap.Float64("irradiance", irradiance),
		zap.Int("results", len(results)),
	)

	return results, nil
}
