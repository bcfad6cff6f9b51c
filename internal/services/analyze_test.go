package services

import (
	"context"
	"errors"
	"math"
	"solar-siting-service/internal/adapters/elevation"
	"solar-siting-service/internal/adapters/irradiance"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/geo"
	"testing"

	"go.uber.org/zap"
)

var austin = domain.AnalysisRequest{
	Center:   domain.Coordinates{Lat: 30.2672, Lng: -97.7431},
	RadiusKm: 5,
}

func newTestAnalyzer(t *testing.T, irr *irradiance.MockIrradianceSource, elev *elevation.MockElevationSource) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(irr, elev, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a
}

func checkResults(t *testing.T, req domain.AnalysisRequest, results []domain.SolarResult) {
	t.Helper()

	if len(results) > MaxResults {
		t.Fatalf("got %d results, max is %d", len(results), MaxResults)
	}
	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("result %d rank = %d, want %d", i, r.Rank, i+1)
		}
		if i > 0 && r.KwhPerDay > results[i-1].KwhPerDay {
			t.Errorf("result %d kwh %f exceeds previous %f", i, r.KwhPerDay, results[i-1].KwhPerDay)
		}
		if d := geo.DistanceKm(req.Center, r.Coordinates); d > req.RadiusKm*1.01 {
			t.Errorf("result %d is %f km from center, radius %f", i, d, req.RadiusKm)
		}
		for j := i + 1; j < len(results); j++ {
			if d := geo.DistanceKm(r.Coordinates, results[j].Coordinates); d < MinSpacingKm {
				t.Errorf("results %d and %d are %f km apart", i, j, d)
			}
		}
	}
}

func TestAnalyzeFlatTerrain(t *testing.T) {
	irr := &irradiance.MockIrradianceSource{Value: 5.8}
	elev := &elevation.MockElevationSource{}
	a := newTestAnalyzer(t, irr, elev)

	var progress []int
	results, err := a.Analyze(context.Background(), austin, func(p int) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != MaxResults {
		t.Fatalf("expected %d results, got %d", MaxResults, len(results))
	}
	for i, r := range results {
		if math.Abs(r.KwhPerDay-5.8) > tolerance {
			t.Errorf("result %d kwh = %f, want 5.8", i, r.KwhPerDay)
		}
	}
	checkResults(t, austin, results)

	calls := irr.Calls()
	if len(calls) != 1 || calls[0] != austin.Center {
		t.Errorf("irradiance calls = %v, want one call at the center", calls)
	}
	if batches := elev.Batches(); len(batches) != 1 || batches[0] != SampleCount(austin.RadiusKm) {
		t.Errorf("elevation batches = %v, want [%d]", batches, SampleCount(austin.RadiusKm))
	}

	want := []int{5, 10, 30, 70, 90, 100}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Fatalf("progress = %v, want %v", progress, want)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	lookup := func(i int, c domain.Coordinates) float64 {
		// Terrain rising to the north-east.
		return (c.Lat-austin.Center.Lat)*20000 + (c.Lng-austin.Center.Lng)*15000
	}

	run := func() []domain.SolarResult {
		a := newTestAnalyzer(t,
			&irradiance.MockIrradianceSource{Value: 6.1},
			&elevation.MockElevationSource{Lookup: lookup},
		)
		results, err := a.Analyze(context.Background(), austin, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return results
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("result %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
	checkResults(t, austin, first)

	// Lower points sit below taller neighbors, so some scores drop below irradiance.
	if first[0].KwhPerDay != 6.1 {
		t.Errorf("best score = %f, want unshaded 6.1", first[0].KwhPerDay)
	}
}

func TestAnalyzeProgressIsOptional(t *testing.T) {
	lookup := func(i int, c domain.Coordinates) float64 { return float64(i%7) * 30 }

	a := newTestAnalyzer(t, &irradiance.MockIrradianceSource{Value: 5.5}, &elevation.MockElevationSource{Lookup: lookup})
	withNil, err := a.Analyze(context.Background(), austin, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := newTestAnalyzer(t, &irradiance.MockIrradianceSource{Value: 5.5}, &elevation.MockElevationSource{Lookup: lookup})
	var last int
	withFn, err := b.Analyze(context.Background(), austin, func(p int) { last = p })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if last != ProgressDone {
		t.Fatalf("last progress = %d, want %d", last, ProgressDone)
	}
	if len(withNil) != len(withFn) {
		t.Fatalf("result counts differ: %d vs %d", len(withNil), len(withFn))
	}
	for i := range withNil {
		if withNil[i] != withFn[i] {
			t.Fatalf("result %d differs: %+v vs %+v", i, withNil[i], withFn[i])
		}
	}
}

func TestAnalyzeSurvivesTotalServiceFailure(t *testing.T) {
	irr := &irradiance.MockIrradianceSource{Err: errors.New("connection refused")}
	elev := &elevation.MockElevationSource{FailBatches: map[int]error{0: errors.New("connection refused")}}
	a := newTestAnalyzer(t, irr, elev)

	results, err := a.Analyze(context.Background(), austin, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != MaxResults {
		t.Fatalf("expected %d results, got %d", MaxResults, len(results))
	}
	for i, r := range results {
		if r.KwhPerDay != FallbackIrradiance {
			t.Errorf("result %d kwh = %f, want fallback %f", i, r.KwhPerDay, FallbackIrradiance)
		}
	}
	checkResults(t, austin, results)
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	a := newTestAnalyzer(t, &irradiance.MockIrradianceSource{Value: 5}, &elevation.MockElevationSource{})

	bad := []domain.AnalysisRequest{
		{Center: domain.Coordinates{Lat: 30, Lng: -97}, RadiusKm: 0},
		{Center: domain.Coordinates{Lat: 30, Lng: -97}, RadiusKm: -1},
		{Center: domain.Coordinates{Lat: 95, Lng: -97}, RadiusKm: 5},
		{Center: domain.Coordinates{Lat: 30, Lng: 200}, RadiusKm: 5},
	}

	for _, req := range bad {
		called := false
		_, err := a.Analyze(context.Background(), req, func(int) { called = true })
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("request %+v: expected ErrInvalidArgument, got %v", req, err)
		}
		if called {
			t.Errorf("request %+v: progress reported for rejected input", req)
		}
	}
}

func TestAnalyzeReturnsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAnalyzer(t, &irradiance.MockIrradianceSource{Value: 5}, &elevation.MockElevationSource{})
	if _, err := a.Analyze(ctx, austin, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewAnalyzerRequiresSources(t *testing.T) {
	if _, err := NewAnalyzer(nil, &elevation.MockElevationSource{}, nil); err == nil {
		t.Errorf("expected error for nil irradiance source")
	}
	if _, err := NewAnalyzer(&irradiance.MockIrradianceSource{}, nil, nil); err == nil {
		t.Errorf("expected error for nil elevation source")
	}
}
