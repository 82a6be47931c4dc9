package playback

import (
	"github.com/jmorel/arkplay/queue"
	"github.com/jmorel/arkplay/resume"
)

// TrackChange is emitted when the session moves to a different track
// (or, under repeat-one, stays on the same track at end-of-queue; the
// player restarts from zero in that case).
//
// Emitted by SetQueue, Next, Previous, JumpTo, JumpToTrack,
// TrackFinished, and RestoreQueue. Read-only queries never emit.
type TrackChange struct {
	Previous      *queue.Track
	Current       *queue.Track
	PreviousIndex int
	Index         int
}

// QueueChange is emitted when the queue contents or ordering change
// (SetQueue, Clear, Remove, shuffle toggles).
type QueueChange struct {
	Tracks []queue.Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	RepeatMode queue.RepeatMode
	Shuffle    bool
}

// ProgressSaved is emitted after a resume position passes the save
// threshold and is handed to the store.
type ProgressSaved struct {
	Progress resume.Progress
}

// ErrorEvent carries a formatted, user-presentable failure message.
// Only best-effort operations emit it; playback itself never blocks on
// these errors.
type ErrorEvent struct {
	Message string
	Err     error
}
