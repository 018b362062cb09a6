package logging

import "strings"

// ProgressSampler thins a run's progress stream for non-interactive output.
// Percent is expected to be monotonic across the whole run, so buckets are
// not reset when the phase changes.
type ProgressSampler struct {
	bucketSize float64
	lastPhase  string
	lastBucket int
}

// NewProgressSampler emits whenever percent crosses a multiple of
// bucketSize (default 5) or the phase changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// Allow reports whether an event should be logged. A nil sampler allows
// everything; a negative percent only counts as a phase change.
func (s *ProgressSampler) Allow(phase string, percent float64) bool {
	if s == nil {
		return true
	}
	allow := false
	if phase = strings.TrimSpace(phase); phase != "" && phase != s.lastPhase {
		s.lastPhase = phase
		allow = true
	}
	if percent < 0 {
		return allow
	}
	bucket := int(min(percent, 100) / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		allow = true
	}
	return allow
}
