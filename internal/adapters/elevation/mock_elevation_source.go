package elevation

import (
	"context"
	"solar-siting-service/internal/domain"
	"sync"
)

// MockElevationSource answers from a lookup function and records batch sizes.
// A nil Lookup returns zero for every point.
type MockElevationSource struct {
	Lookup func(i int, c domain.Coordinates) float64
	// FailBatches makes the n-th call (0-based) fail.
	FailBatches map[int]error

	mu      sync.Mutex
	batches []int
	offset  int
}

func (m *MockElevationSource) Elevations(ctx context.Context, points []domain.Coordinates) ([]float64, error) {
	m.mu.Lock()
	call := len(m.batches)
	m.batches = append(m.batches, len(points))
	offset := m.offset
	m.offset += len(points)
	m.mu.Unlock()

	if err, ok := m.FailBatches[call]; ok {
		return nil, err
	}

	out := make([]float64, len(points))
	if m.Lookup == nil {
		return out, nil
	}
	for i, p := range points {
		out[i] = m.Lookup(offset+i, p)
	}
	return out, nil
}

// Batches returns the size of every batch requested so far.
func (m *MockElevationSource) Batches() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.batches...)
}
