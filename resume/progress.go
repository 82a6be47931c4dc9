package resume

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Progress is a saved playback position for one file of an archive item.
// Records are keyed by (ItemIdentifier, Filename); at most one live
// record exists per key.
type Progress struct {
	ItemIdentifier string
	Filename       string
	Position       time.Duration // elapsed playback time
	Duration       time.Duration // total length, 0 if unknown
	Title          string
	ThumbnailURL   string
	IsVideo        bool
	UpdatedAt      time.Time
}

// Key returns the stable record key, "{itemIdentifier}/{filename}".
func (p Progress) Key() string {
	return p.ItemIdentifier + "/" + p.Filename
}

// Percent returns the watched fraction, clamped to [0, 1].
// Returns 0 when the duration is unknown.
func (p Progress) Percent() float64 {
	if p.Duration <= 0 {
		return 0
	}
	pct := float64(p.Position) / float64(p.Duration)
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// Remaining returns the unwatched time, never negative.
func (p Progress) Remaining() time.Duration {
	remaining := p.Duration - p.Position
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResumeLabel returns the label for a resume affordance,
// e.g. "Resume at 12:34".
func (p Progress) ResumeLabel() string {
	return "Resume at " + FormatPosition(p.Position)
}

// UpdatedAgo returns a relative description of the last save,
// e.g. "2 days ago", for continue-rail rows.
func (p Progress) UpdatedAgo() string {
	if p.UpdatedAt.IsZero() {
		return ""
	}
	return humanize.Time(p.UpdatedAt)
}

// FormatPosition renders a playback position as M:SS, or H:MM:SS past
// an hour.
func FormatPosition(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
