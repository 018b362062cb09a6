package analysis

import (
	"context"
	"sync"

	"camtrace/internal/camera"
)

// Percent bounds per phase.
const (
	sidecarStart    = 0.0
	sidecarEnd      = 10.0
	discoveryEnd    = 20.0
	extractionEnd   = 80.0
	groupingEnd     = 90.0
	mixedEnd        = 99.0
	completePercent = 100.0
)

// reporter serializes events onto the caller's channel and keeps percent
// non-decreasing. A nil channel discards everything.
type reporter struct {
	mu     sync.Mutex
	events chan<- camera.ProgressEvent
	done   <-chan struct{}
	last   float64
}

func newReporter(ctx context.Context, events chan<- camera.ProgressEvent) *reporter {
	return &reporter{events: events, done: ctx.Done()}
}

func (r *reporter) emit(phase camera.Phase, message string, percent float64, item string) {
	if r == nil || r.events == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if percent > completePercent {
		percent = completePercent
	}
	if percent < r.last {
		percent = r.last
	}
	r.last = percent

	event := camera.ProgressEvent{Phase: phase, Message: message, Percent: percent, CurrentItem: item}
	// Stop delivering once the caller cancels so an abandoned channel cannot
	// wedge the workers.
	select {
	case r.events <- event:
	case <-r.done:
	}
}

// interpolate maps done/total onto [start,end].
func interpolate(start, end float64, done, total int) float64 {
	if total <= 0 {
		return end
	}
	return start + (end-start)*float64(done)/float64(total)
}
