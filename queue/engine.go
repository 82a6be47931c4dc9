package queue

import "math/rand/v2"

// Engine owns the ordered track list and playback position for one
// active session. It is a plain state machine: every method mutates
// in-memory state only and returns nil rather than failing.
//
// Engine is not safe for concurrent use. Callers that share an Engine
// across goroutines must serialize access themselves (the playback
// session facade does this with a single mutex).
type Engine struct {
	tracks       []Track // active ordering (shuffled or original)
	original     []Track // ordering as supplied to SetQueue
	currentIndex int     // -1 if nothing queued
	shuffled     bool
	repeatMode   RepeatMode
}

// NewEngine creates a new empty queue engine.
func NewEngine() *Engine {
	return &Engine{currentIndex: -1}
}

// SetQueue replaces the queue contents with the given tracks.
// The supplied order becomes the new original order. startAt is clamped
// into range and selects the track that becomes current. If shuffle is
// already enabled the new queue is shuffled immediately, with the
// startAt track pinned to index 0 so it still plays first.
func (e *Engine) SetQueue(tracks []Track, startAt int) *Track {
	if len(tracks) == 0 {
		e.tracks = nil
		e.original = nil
		e.currentIndex = -1
		return nil
	}

	if startAt < 0 {
		startAt = 0
	} else if startAt >= len(tracks) {
		startAt = len(tracks) - 1
	}

	e.original = make([]Track, len(tracks))
	copy(e.original, tracks)
	e.tracks = make([]Track, len(tracks))
	copy(e.tracks, tracks)
	e.currentIndex = startAt

	if e.shuffled {
		e.reshuffleKeepingCurrent()
	}
	return e.CurrentTrack()
}

// Clear resets all state: no tracks, shuffle off, repeat off.
func (e *Engine) Clear() {
	e.tracks = nil
	e.original = nil
	e.currentIndex = -1
	e.shuffled = false
	e.repeatMode = RepeatOff
}

// CurrentTrack returns the current track, or nil if the queue is empty.
func (e *Engine) CurrentTrack() *Track {
	if e.currentIndex < 0 || e.currentIndex >= len(e.tracks) {
		return nil
	}
	t := e.tracks[e.currentIndex]
	return &t
}

// CurrentIndex returns the zero-based current index (-1 if empty).
func (e *Engine) CurrentIndex() int {
	return e.currentIndex
}

// CurrentPosition returns the one-based position for display (0 if empty).
func (e *Engine) CurrentPosition() int {
	if e.currentIndex < 0 {
		return 0
	}
	return e.currentIndex + 1
}

// TrackCount returns the number of tracks in the queue.
func (e *Engine) TrackCount() int {
	return len(e.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (e *Engine) IsEmpty() bool {
	return len(e.tracks) == 0
}

// Tracks returns a copy of the active ordering.
func (e *Engine) Tracks() []Track {
	result := make([]Track, len(e.tracks))
	copy(result, e.tracks)
	return result
}

// OriginalTracks returns a copy of the order supplied to SetQueue.
func (e *Engine) OriginalTracks() []Track {
	result := make([]Track, len(e.original))
	copy(result, e.original)
	return result
}

// IsShuffled returns whether shuffle is enabled.
func (e *Engine) IsShuffled() bool {
	return e.shuffled
}

// RepeatMode returns the current repeat mode.
func (e *Engine) RepeatMode() RepeatMode {
	return e.repeatMode
}

// HasNext reports whether Next would yield a track by advancing.
// True when not on the last track, or when repeat-all wraps.
func (e *Engine) HasNext() bool {
	if len(e.tracks) == 0 {
		return false
	}
	return e.currentIndex < len(e.tracks)-1 || e.repeatMode == RepeatAll
}

// HasPrevious reports whether Previous would move to an earlier track.
// True when not on the first track, or when repeat-all wraps.
func (e *Engine) HasPrevious() bool {
	if len(e.tracks) == 0 {
		return false
	}
	return e.currentIndex > 0 || e.repeatMode == RepeatAll
}

// Next advances to the next track and returns it.
//
// At the end of the queue the repeat mode decides: repeat-all wraps to
// the first track, repeat-one returns the current track without moving
// (restart-from-zero is the player's job, not the engine's), and
// repeat-off returns nil with the index unchanged.
func (e *Engine) Next() *Track {
	if len(e.tracks) == 0 {
		return nil
	}
	if e.currentIndex < len(e.tracks)-1 {
		e.currentIndex++
		return e.CurrentTrack()
	}
	switch e.repeatMode {
	case RepeatOne:
		return e.CurrentTrack()
	case RepeatAll:
		e.currentIndex = 0
		return e.CurrentTrack()
	default:
		return nil
	}
}

// Previous moves to the previous track and returns it.
//
// At the start of the queue: repeat-all wraps to the last track,
// repeat-one holds position, and repeat-off returns the current first
// track rather than nil. The repeat-off case is intentionally
// asymmetric with Next: "previous" at the top of the queue is a safe
// no-op that still yields something playable.
func (e *Engine) Previous() *Track {
	if len(e.tracks) == 0 {
		return nil
	}
	if e.currentIndex > 0 {
		e.currentIndex--
		return e.CurrentTrack()
	}
	switch e.repeatMode {
	case RepeatOne:
		return e.CurrentTrack()
	case RepeatAll:
		e.currentIndex = len(e.tracks) - 1
		return e.CurrentTrack()
	default:
		return e.CurrentTrack()
	}
}

// JumpTo sets the current index to the given position.
// Returns the track at that position, or nil (state unchanged) if the
// index is out of range.
func (e *Engine) JumpTo(index int) *Track {
	if index < 0 || index >= len(e.tracks) {
		return nil
	}
	e.currentIndex = index
	return e.CurrentTrack()
}

// JumpToTrack finds the given track by ID in the active ordering and
// makes it current. Returns nil if the track is not in the queue.
func (e *Engine) JumpToTrack(track Track) *Track {
	for i, t := range e.tracks {
		if t.Same(track) {
			return e.JumpTo(i)
		}
	}
	return nil
}

// Remove deletes the track at the given index from the queue (both the
// active and original orderings). Returns false if index is out of
// range. If the current track is removed the index stays put, now
// pointing at the following track, clamped at the new end.
func (e *Engine) Remove(index int) bool {
	if index < 0 || index >= len(e.tracks) {
		return false
	}
	removed := e.tracks[index]
	e.tracks = append(e.tracks[:index], e.tracks[index+1:]...)
	for i, t := range e.original {
		if t.Same(removed) {
			e.original = append(e.original[:i], e.original[i+1:]...)
			break
		}
	}

	if len(e.tracks) == 0 {
		e.currentIndex = -1
		return true
	}
	if e.currentIndex > index {
		e.currentIndex--
	} else if e.currentIndex == index && e.currentIndex >= len(e.tracks) {
		e.currentIndex = len(e.tracks) - 1
	}
	return true
}

// SetRepeatMode sets the repeat mode. Track order and position are
// unaffected.
func (e *Engine) SetRepeatMode(mode RepeatMode) {
	e.repeatMode = mode
}

// CycleRepeatMode advances off -> all -> one -> off and returns the new mode.
func (e *Engine) CycleRepeatMode() RepeatMode {
	e.repeatMode = e.repeatMode.Next()
	return e.repeatMode
}

// SetShuffle enables or disables shuffle. Enabling generates a new
// random permutation with the current track pinned to index 0.
// Disabling restores the original order and repositions the index to
// wherever the current track sits in it. No-op if already in the
// requested state.
func (e *Engine) SetShuffle(enabled bool) {
	if e.shuffled == enabled {
		return
	}
	e.shuffled = enabled
	if len(e.tracks) == 0 {
		return
	}
	if enabled {
		e.reshuffleKeepingCurrent()
	} else {
		e.restoreOriginalOrder()
	}
}

// ToggleShuffle flips shuffle and returns the new state.
func (e *Engine) ToggleShuffle() bool {
	e.SetShuffle(!e.shuffled)
	return e.shuffled
}

// reshuffleKeepingCurrent rebuilds the active ordering as a random
// permutation of the original order with the current track at index 0.
func (e *Engine) reshuffleKeepingCurrent() {
	current := e.tracks[e.currentIndex]
	rest := make([]Track, 0, len(e.original)-1)
	for _, t := range e.original {
		if !t.Same(current) {
			rest = append(rest, t)
		}
	}
	rand.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	e.tracks = append([]Track{current}, rest...)
	e.currentIndex = 0
}

// restoreOriginalOrder puts the active ordering back to the original
// and moves the index to the current track's position in it.
func (e *Engine) restoreOriginalOrder() {
	current := e.tracks[e.currentIndex]
	e.tracks = make([]Track, len(e.original))
	copy(e.tracks, e.original)
	e.currentIndex = 0
	for i, t := range e.tracks {
		if t.Same(current) {
			e.currentIndex = i
			break
		}
	}
}
