// Package playback ties the queue engine and the resume store into one
// playback session facade for player/UI code.
//
// The session is the concurrency boundary of the core: the engine
// itself carries no lock, so every engine access goes through the
// session's single mutex. Player code reads CurrentTrack to know what
// stream to open, drives Next/Previous from transport controls, and the
// session handles resume bookkeeping: a periodic position save while
// playing, a final save on Close, and record removal when a track
// finishes naturally or the user starts over.
package playback

import (
	"sync"
	"time"

	"github.com/jmorel/arkplay/internal/errmsg"
	"github.com/jmorel/arkplay/queue"
	"github.com/jmorel/arkplay/resume"
	"github.com/jmorel/arkplay/state"
)

// DefaultSaveInterval is the cadence of periodic position saves.
const DefaultSaveInterval = 10 * time.Second

// PositionFunc reports the player's current position and duration.
// ok is false when nothing is playing.
type PositionFunc func() (position, duration time.Duration, ok bool)

// QueueStore persists queue snapshots across launches.
// *state.Manager satisfies it.
type QueueStore interface {
	SaveQueue(state.QueueState)
	GetQueue() (*state.QueueState, error)
}

// Verify the state manager satisfies QueueStore at compile time.
var _ QueueStore = (*state.Manager)(nil)

// Options configures a session.
type Options struct {
	// Queue receives queue snapshots after every mutation and provides
	// the saved snapshot for RestoreQueue. Nil disables persistence.
	Queue QueueStore
	// Position is polled by the save ticker. Nil disables periodic
	// saves (SaveProgressNow also becomes a no-op).
	Position PositionFunc
	// SaveInterval overrides DefaultSaveInterval when positive.
	SaveInterval time.Duration
}

// Session owns one active playback queue and its resume bookkeeping.
type Session struct {
	mu     sync.RWMutex
	engine *queue.Engine

	store      *resume.Store
	queueStore QueueStore
	posFn      PositionFunc

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// NewSession creates a session over the given resume store. Starting a
// new queue via SetQueue implicitly replaces any previous session's
// state; only one session should be live at a time.
func NewSession(store *resume.Store, opts Options) *Session {
	s := &Session{
		engine:     queue.NewEngine(),
		store:      store,
		queueStore: opts.Queue,
		posFn:      opts.Position,
		done:       make(chan struct{}),
	}
	if s.posFn != nil {
		interval := opts.SaveInterval
		if interval <= 0 {
			interval = DefaultSaveInterval
		}
		go s.saveLoop(interval)
	}
	return s
}

// Store returns the underlying resume store.
func (s *Session) Store() *resume.Store {
	return s.store
}

// SetQueue replaces the queue and returns the starting track.
func (s *Session) SetQueue(tracks []queue.Track, startAt int) *queue.Track {
	s.mu.Lock()
	previous := s.engine.CurrentTrack()
	previousIndex := s.engine.CurrentIndex()
	track := s.engine.SetQueue(tracks, startAt)
	queueEvent := s.queueEventLocked()
	snapshot := s.snapshotLocked()
	index := s.engine.CurrentIndex()
	s.mu.Unlock()

	s.persistQueue(snapshot)
	s.broadcastQueue(queueEvent)
	if track != nil {
		s.broadcastTrack(TrackChange{
			Previous: previous, Current: track,
			PreviousIndex: previousIndex, Index: index,
		})
	}
	return track
}

// Clear empties the queue and resets shuffle and repeat.
func (s *Session) Clear() {
	s.mu.Lock()
	s.engine.Clear()
	queueEvent := s.queueEventLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persistQueue(snapshot)
	s.broadcastQueue(queueEvent)
}

// Next advances the queue, honoring the repeat mode, and returns the
// track that should play (nil at end-of-queue with repeat off).
func (s *Session) Next() *queue.Track {
	return s.navigate(func(e *queue.Engine) *queue.Track { return e.Next() })
}

// Previous moves back one track. At the start of the queue with repeat
// off it returns the current first track, so the transport control is
// always safe to press.
func (s *Session) Previous() *queue.Track {
	return s.navigate(func(e *queue.Engine) *queue.Track { return e.Previous() })
}

// JumpTo makes the track at index current and returns it, or nil if the
// index is out of range.
func (s *Session) JumpTo(index int) *queue.Track {
	return s.navigate(func(e *queue.Engine) *queue.Track { return e.JumpTo(index) })
}

// JumpToTrack makes the given track current (matched by ID) and returns
// it, or nil if it is not in the queue.
func (s *Session) JumpToTrack(track queue.Track) *queue.Track {
	return s.navigate(func(e *queue.Engine) *queue.Track { return e.JumpToTrack(track) })
}

func (s *Session) navigate(fn func(*queue.Engine) *queue.Track) *queue.Track {
	s.mu.Lock()
	previous := s.engine.CurrentTrack()
	previousIndex := s.engine.CurrentIndex()
	track := fn(s.engine)
	index := s.engine.CurrentIndex()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if track == nil {
		return nil
	}
	s.persistQueue(snapshot)
	s.broadcastTrack(TrackChange{
		Previous: previous, Current: track,
		PreviousIndex: previousIndex, Index: index,
	})
	return track
}

// Remove deletes the track at index from the queue.
func (s *Session) Remove(index int) bool {
	s.mu.Lock()
	ok := s.engine.Remove(index)
	queueEvent := s.queueEventLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.persistQueue(snapshot)
	s.broadcastQueue(queueEvent)
	return true
}

// ToggleShuffle flips shuffle and returns the new state.
func (s *Session) ToggleShuffle() bool {
	s.mu.Lock()
	enabled := s.engine.ToggleShuffle()
	modeEvent := s.modeEventLocked()
	queueEvent := s.queueEventLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persistQueue(snapshot)
	s.broadcastMode(modeEvent)
	s.broadcastQueue(queueEvent)
	return enabled
}

// SetShuffle enables or disables shuffle.
func (s *Session) SetShuffle(enabled bool) {
	s.mu.Lock()
	changed := s.engine.IsShuffled() != enabled
	s.engine.SetShuffle(enabled)
	modeEvent := s.modeEventLocked()
	queueEvent := s.queueEventLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if !changed {
		return
	}
	s.persistQueue(snapshot)
	s.broadcastMode(modeEvent)
	s.broadcastQueue(queueEvent)
}

// SetRepeatMode sets the repeat mode.
func (s *Session) SetRepeatMode(mode queue.RepeatMode) {
	s.mu.Lock()
	s.engine.SetRepeatMode(mode)
	modeEvent := s.modeEventLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persistQueue(snapshot)
	s.broadcastMode(modeEvent)
}

// CycleRepeatMode advances off -> all -> one -> off and returns the new mode.
func (s *Session) CycleRepeatMode() queue.RepeatMode {
	s.mu.Lock()
	mode := s.engine.CycleRepeatMode()
	modeEvent := s.modeEventLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persistQueue(snapshot)
	s.broadcastMode(modeEvent)
	return mode
}

// Read-only queries.

func (s *Session) CurrentTrack() *queue.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.CurrentTrack()
}

func (s *Session) Tracks() []queue.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Tracks()
}

func (s *Session) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.CurrentIndex()
}

// CurrentPosition returns the one-based display position (0 if empty).
func (s *Session) CurrentPosition() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.CurrentPosition()
}

func (s *Session) TrackCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.TrackCount()
}

func (s *Session) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.IsEmpty()
}

func (s *Session) HasNext() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.HasNext()
}

func (s *Session) HasPrevious() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.HasPrevious()
}

func (s *Session) RepeatMode() queue.RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.RepeatMode()
}

func (s *Session) IsShuffled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.IsShuffled()
}

// ResumePosition returns the saved position for the track if a resume
// offer is meaningful (far enough in, not complete). The player uses
// this at open time to decide "Resume at MM:SS" vs "Play".
func (s *Session) ResumePosition(track queue.Track) (time.Duration, bool) {
	p := s.store.GetProgress(track.ItemIdentifier, track.Filename)
	if p == nil {
		return 0, false
	}
	return p.Position, true
}

// StartOver discards the saved position for the track. Called when the
// user declines the resume offer.
func (s *Session) StartOver(track queue.Track) {
	s.store.RemoveProgress(track.ItemIdentifier, track.Filename)
}

// TrackFinished handles natural end-of-track: the finished track's
// resume record is removed and the queue advances. Under repeat-one the
// same track comes back and the player restarts it from zero; nil means
// the queue is exhausted.
func (s *Session) TrackFinished() *queue.Track {
	s.mu.Lock()
	finished := s.engine.CurrentTrack()
	s.mu.Unlock()

	if finished != nil {
		s.store.RemoveProgress(finished.ItemIdentifier, finished.Filename)
	}
	return s.Next()
}

// SaveProgressNow captures the player position immediately and persists
// it, subject to the store's thresholds. Called by the save ticker and
// once more on Close.
func (s *Session) SaveProgressNow() {
	if s.posFn == nil {
		return
	}
	s.mu.RLock()
	track := s.engine.CurrentTrack()
	s.mu.RUnlock()
	if track == nil {
		return
	}

	position, duration, ok := s.posFn()
	if !ok {
		return
	}
	if duration <= 0 {
		duration = track.Duration
	}

	p := resume.Progress{
		ItemIdentifier: track.ItemIdentifier,
		Filename:       track.Filename,
		Position:       position,
		Duration:       duration,
		Title:          track.Title,
		ThumbnailURL:   track.ThumbnailURL,
		IsVideo:        resume.IsVideoFilename(track.Filename),
	}
	s.store.SaveProgress(p)

	if duration > 0 && position >= s.store.Policy().MinResume {
		s.broadcastProgress(ProgressSaved{Progress: p})
	}
}

// RestoreQueue loads the persisted queue snapshot and rebuilds the
// engine from it: original order, current track, shuffle, and repeat
// mode all survive the restart (shuffle produces a fresh permutation
// with the current track first). Returns the current track, or nil if
// nothing was saved.
func (s *Session) RestoreQueue() *queue.Track {
	if s.queueStore == nil {
		return nil
	}
	saved, err := s.queueStore.GetQueue()
	if err != nil {
		s.broadcastError(ErrorEvent{
			Message: errmsg.Format(errmsg.OpQueueRestore, err),
			Err:     err,
		})
		return nil
	}
	if saved == nil || len(saved.Tracks) == 0 {
		return nil
	}

	tracks := make([]queue.Track, len(saved.Tracks))
	startAt := 0
	for i, t := range saved.Tracks {
		tracks[i] = queue.Track{
			ID:             t.TrackID,
			ItemIdentifier: t.ItemIdentifier,
			Filename:       t.Filename,
			Title:          t.Title,
			Artist:         t.Artist,
			Album:          t.Album,
			TrackNumber:    t.TrackNumber,
			Duration:       t.Duration,
			StreamURL:      t.StreamURL,
			ThumbnailURL:   t.ThumbnailURL,
		}
		if t.TrackID == saved.CurrentTrackID {
			startAt = i
		}
	}

	mode := queue.RepeatMode(saved.RepeatMode)
	if mode != queue.RepeatAll && mode != queue.RepeatOne {
		mode = queue.RepeatOff
	}

	s.mu.Lock()
	s.engine.SetRepeatMode(mode)
	current := s.engine.SetQueue(tracks, startAt)
	if saved.Shuffle {
		s.engine.SetShuffle(true)
	}
	queueEvent := s.queueEventLocked()
	index := s.engine.CurrentIndex()
	s.mu.Unlock()

	s.broadcastQueue(queueEvent)
	if current != nil {
		s.broadcastTrack(TrackChange{Current: current, PreviousIndex: -1, Index: index})
	}
	return current
}

// Subscribe creates a new event subscription.
func (s *Session) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close stops the save ticker, performs a final position save so the
// last seconds of playback are kept, and closes all subscriptions.
// Close the session before closing the state manager so the final
// writes land.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	// Final save before teardown completes.
	s.SaveProgressNow()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return nil
}

func (s *Session) saveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.SaveProgressNow()
		case <-s.done:
			return
		}
	}
}

// snapshotLocked builds the persistence snapshot. Tracks are stored in
// original order; the current track is identified by ID so restore
// works whatever the shuffle state. Callers must hold mu.
func (s *Session) snapshotLocked() state.QueueState {
	snap := state.QueueState{
		RepeatMode: int(s.engine.RepeatMode()),
		Shuffle:    s.engine.IsShuffled(),
	}
	if current := s.engine.CurrentTrack(); current != nil {
		snap.CurrentTrackID = current.ID
	}
	for _, t := range s.engine.OriginalTracks() {
		snap.Tracks = append(snap.Tracks, state.QueueTrack{
			TrackID:        t.ID,
			ItemIdentifier: t.ItemIdentifier,
			Filename:       t.Filename,
			Title:          t.Title,
			Artist:         t.Artist,
			Album:          t.Album,
			TrackNumber:    t.TrackNumber,
			Duration:       t.Duration,
			StreamURL:      t.StreamURL,
			ThumbnailURL:   t.ThumbnailURL,
		})
	}
	return snap
}

func (s *Session) queueEventLocked() QueueChange {
	return QueueChange{Tracks: s.engine.Tracks(), Index: s.engine.CurrentIndex()}
}

func (s *Session) modeEventLocked() ModeChange {
	return ModeChange{RepeatMode: s.engine.RepeatMode(), Shuffle: s.engine.IsShuffled()}
}

func (s *Session) persistQueue(snap state.QueueState) {
	if s.queueStore != nil {
		s.queueStore.SaveQueue(snap)
	}
}

func (s *Session) broadcastTrack(e TrackChange) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendTrack(e)
	}
}

func (s *Session) broadcastQueue(e QueueChange) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendQueue(e)
	}
}

func (s *Session) broadcastMode(e ModeChange) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendMode(e)
	}
}

func (s *Session) broadcastProgress(e ProgressSaved) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendProgress(e)
	}
}

func (s *Session) broadcastError(e ErrorEvent) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		sub.sendError(e)
	}
}
