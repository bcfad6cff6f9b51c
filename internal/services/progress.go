package services

import (
	"context"
	"math"
)

// ProgressFunc receives completion percentages in [0, 100].
// Values within one run never decrease and the last one is 100.
type ProgressFunc func(percent int)

// Pipeline milestones.
const (
	ProgressStarted    = 5
	ProgressSampled    = 10
	ProgressIrradiance = 30
	ProgressElevations = 70
	ProgressScored     = 90
	ProgressDone       = 100
)

// ProgressEvent is one progress milestone of a run, for delivery across goroutines.
type ProgressEvent struct {
	RunID   string
	Percent int
}

// ChannelReporter returns a ProgressFunc that emits events on ch.
// A send blocks until the consumer receives it or ctx is done; events
// reported after ctx is done are dropped.
func ChannelReporter(ctx context.Context, runID string, ch chan<- ProgressEvent) ProgressFunc {
	return func(percent int) {
		select {
		case ch <- ProgressEvent{RunID: runID, Percent: percent}:
		case <-ctx.Done():
		}
	}
}

// progressTracker clamps reports to be non-decreasing and tolerates a nil callback.
type progressTracker struct {
	fn   ProgressFunc
	last int
}

func (p *progressTracker) report(percent int) {
	percent = min(max(percent, p.last), ProgressDone)
	p.last = percent
	if p.fn != nil {
		p.fn(percent)
	}
}

// elevationProgress interpolates between the irradiance and elevation milestones.
func elevationProgress(processed, total int) int {
	if total <= 0 {
		return ProgressElevations
	}
	span := float64(ProgressElevations - ProgressIrradiance)
	return ProgressIrradiance + int(math.Round(float64(processed)/float64(total)*span))
}
