package services

import (
	"math"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/geo"
)

const (
	minSamplePoints = 50
	maxSamplePoints = 100

	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

// lcg is a 32-bit linear congruential generator. Each run owns its own instance.
type lcg struct {
	state uint32
}

// next advances the generator and returns a value in [0, 1).
func (g *lcg) next() float64 {
	// uint32 arithmetic wraps, which is the mod 2^32 step.
	g.state = g.state*lcgMultiplier + lcgIncrement
	return float64(g.state) / lcgModulus
}

// sampleSeed combines the request parameters into the generator seed.
// Negative seeds wrap into the 32-bit state.
func sampleSeed(center domain.Coordinates, radiusKm float64) uint32 {
	seed := int64(math.Floor(center.Lat*1000 + center.Lng*100 + radiusKm))
	return uint32(seed)
}

// SampleCount is the number of candidate points generated for a radius.
// It grows with area and is clamped to bound external lookups.
func SampleCount(radiusKm float64) int {
	n := int(math.Round(radiusKm * radiusKm * 2))
	return min(max(n, minSamplePoints), maxSamplePoints)
}

// SamplePoints draws SampleCount(radiusKm) points uniformly over the disc
// around center. The sequence depends only on the inputs.
func SamplePoints(center domain.Coordinates, radiusKm float64) []domain.Coordinates {
	count := SampleCount(radiusKm)
	rng := &lcg{state: sampleSeed(center, radiusKm)}

	points := make([]domain.Coordinates, 0, count)
	for i := 0; i < count; i++ {
		// sqrt keeps areal density uniform instead of bunching at the center.
		r := radiusKm * math.Sqrt(rng.next())
		theta := 2 * math.Pi * rng.next()

		points = append(points, geo.Offset(center, r*math.Cos(theta), r*math.Sin(theta)))
	}

	return points
}
