package irradiance

import (
	"context"
	"solar-siting-service/internal/domain"
	"sync"
)

// MockIrradianceSource returns a fixed value (or error) and records calls.
type MockIrradianceSource struct {
	Value float64
	Err   error

	mu    sync.Mutex
	calls []domain.Coordinates
}

func (m *MockIrradianceSource) MeanIrradiance(ctx context.Context, c domain.Coordinates) (float64, error) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}
	return m.Value, nil
}

// Calls returns the coordinates passed to MeanIrradiance so far.
func (m *MockIrradianceSource) Calls() []domain.Coordinates {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Coordinates(nil), m.calls...)
}
