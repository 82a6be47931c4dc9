package resume

import "time"

// Default thresholds, matching the tvOS client behavior this library
// backs: positions in the first 30 seconds are not worth resuming, and
// an item counts as finished once 95% is watched or less than 30
// seconds remain.
const (
	DefaultMinResume           = 30 * time.Second
	DefaultCompletionPercent   = 0.95
	DefaultCompletionRemaining = 30 * time.Second
)

// Policy decides when a saved position is worth offering as a resume
// point and when an item counts as finished.
type Policy struct {
	// MinResume is the elapsed time below which a position is neither
	// persisted nor surfaced.
	MinResume time.Duration
	// CompletionPercent is the watched fraction at or above which the
	// item is considered complete.
	CompletionPercent float64
	// CompletionRemaining marks the item complete when less than this
	// much time is left, regardless of percentage.
	CompletionRemaining time.Duration
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MinResume:           DefaultMinResume,
		CompletionPercent:   DefaultCompletionPercent,
		CompletionRemaining: DefaultCompletionRemaining,
	}
}

// Complete reports whether the record represents a finished playback.
func (pol Policy) Complete(p Progress) bool {
	if p.Duration <= 0 {
		return false
	}
	if p.Remaining() < pol.CompletionRemaining {
		return true
	}
	return p.Percent() >= pol.CompletionPercent
}

// Resumable reports whether the record is worth offering as a resume
// point: far enough in to matter, not yet complete, and with a known
// duration.
func (pol Policy) Resumable(p Progress) bool {
	if p.Duration <= 0 || p.Position < 0 {
		return false
	}
	if p.Position < pol.MinResume {
		return false
	}
	return !pol.Complete(p)
}
