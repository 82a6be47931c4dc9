package playback

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorel/arkplay/queue"
	"github.com/jmorel/arkplay/resume"
	"github.com/jmorel/arkplay/state"
)

func makeTracks(n int) []queue.Track {
	tracks := make([]queue.Track, n)
	for i := range tracks {
		filename := fmt.Sprintf("t%02d.mp3", i+1)
		tracks[i] = queue.Track{
			ID:             queue.TrackID("gd1977", filename),
			ItemIdentifier: "gd1977",
			Filename:       filename,
			Title:          fmt.Sprintf("Track %d", i+1),
			Duration:       5 * time.Minute,
			StreamURL:      "https://archive.org/download/gd1977/" + filename,
		}
	}
	return tracks
}

// positionStub is a settable PositionFunc for tests.
type positionStub struct {
	mu       sync.Mutex
	position time.Duration
	duration time.Duration
	ok       bool
}

func (p *positionStub) set(position, duration time.Duration, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position, p.duration, p.ok = position, duration, ok
}

func (p *positionStub) fn() (time.Duration, time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position, p.duration, p.ok
}

func newTestSession(opts Options) (*Session, *resume.MemoryBackend) {
	backend := resume.NewMemoryBackend()
	store := resume.NewStore(backend, resume.DefaultPolicy())
	return NewSession(store, opts), backend
}

func TestSession_SetQueueAndNavigate(t *testing.T) {
	s, _ := newTestSession(Options{})
	defer s.Close()

	track := s.SetQueue(makeTracks(5), 2)
	require.NotNil(t, track)
	assert.Equal(t, "Track 3", track.Title)
	assert.Equal(t, 3, s.CurrentPosition())

	next := s.Next()
	require.NotNil(t, next)
	assert.Equal(t, "Track 4", next.Title)

	prev := s.Previous()
	require.NotNil(t, prev)
	assert.Equal(t, "Track 3", prev.Title)
}

func TestSession_NextAtEndRespectsRepeat(t *testing.T) {
	s, _ := newTestSession(Options{})
	defer s.Close()
	s.SetQueue(makeTracks(3), 2)

	assert.Nil(t, s.Next(), "repeat off at end should yield nil")
	assert.Equal(t, 2, s.CurrentIndex(), "index unchanged at end")

	s.SetRepeatMode(queue.RepeatAll)
	next := s.Next()
	require.NotNil(t, next)
	assert.Equal(t, "Track 1", next.Title)
}

func TestSession_TrackChangeEvents(t *testing.T) {
	s, _ := newTestSession(Options{})
	defer s.Close()
	sub := s.Subscribe()

	s.SetQueue(makeTracks(3), 0)

	select {
	case e := <-sub.TrackChanged:
		require.NotNil(t, e.Current)
		assert.Equal(t, "Track 1", e.Current.Title)
		assert.Equal(t, 0, e.Index)
	case <-time.After(time.Second):
		t.Fatal("no TrackChange after SetQueue")
	}

	s.Next()
	select {
	case e := <-sub.TrackChanged:
		require.NotNil(t, e.Current)
		assert.Equal(t, "Track 2", e.Current.Title)
		assert.Equal(t, 0, e.PreviousIndex)
		assert.Equal(t, 1, e.Index)
	case <-time.After(time.Second):
		t.Fatal("no TrackChange after Next")
	}
}

func TestSession_ModeChangeEvents(t *testing.T) {
	s, _ := newTestSession(Options{})
	defer s.Close()
	s.SetQueue(makeTracks(3), 0)
	sub := s.Subscribe()

	s.CycleRepeatMode()

	select {
	case e := <-sub.ModeChanged:
		assert.Equal(t, queue.RepeatAll, e.RepeatMode)
		assert.False(t, e.Shuffle)
	case <-time.After(time.Second):
		t.Fatal("no ModeChange after CycleRepeatMode")
	}
}

func TestSession_PersistsQueueSnapshots(t *testing.T) {
	mock := state.NewMock()
	s, _ := newTestSession(Options{Queue: mock})
	defer s.Close()

	s.SetQueue(makeTracks(4), 1)
	s.ToggleShuffle()
	s.SetRepeatMode(queue.RepeatOne)

	assert.Equal(t, 3, mock.QueueSaves())

	snap, err := mock.GetQueue()
	require.NoError(t, err)
	assert.True(t, snap.Shuffle)
	assert.Equal(t, int(queue.RepeatOne), snap.RepeatMode)
	assert.Equal(t, "gd1977/t02.mp3", snap.CurrentTrackID)

	// Snapshot tracks are the original order even while shuffled.
	require.Len(t, snap.Tracks, 4)
	for i, tr := range snap.Tracks {
		assert.Equal(t, fmt.Sprintf("Track %d", i+1), tr.Title)
	}
}

func TestSession_RestoreQueue(t *testing.T) {
	mock := state.NewMock()

	first, _ := newTestSession(Options{Queue: mock})
	first.SetQueue(makeTracks(5), 3)
	first.SetRepeatMode(queue.RepeatAll)
	require.NoError(t, first.Close())

	second, _ := newTestSession(Options{Queue: mock})
	defer second.Close()
	current := second.RestoreQueue()

	require.NotNil(t, current)
	assert.Equal(t, "Track 4", current.Title)
	assert.Equal(t, 5, second.TrackCount())
	assert.Equal(t, queue.RepeatAll, second.RepeatMode())
	assert.False(t, second.IsShuffled())
	assert.Equal(t, 3, second.CurrentIndex())
}

func TestSession_RestoreQueue_Shuffled(t *testing.T) {
	mock := state.NewMock()

	first, _ := newTestSession(Options{Queue: mock})
	first.SetQueue(makeTracks(5), 2)
	first.ToggleShuffle()
	require.NoError(t, first.Close())

	second, _ := newTestSession(Options{Queue: mock})
	defer second.Close()
	current := second.RestoreQueue()

	require.NotNil(t, current)
	assert.Equal(t, "Track 3", current.Title, "current track survives the restart")
	assert.True(t, second.IsShuffled())
	assert.Equal(t, 0, second.CurrentIndex(), "shuffled current track is pinned first")

	// Un-shuffling after restore still recovers the original order.
	second.SetShuffle(false)
	tracks := second.Tracks()
	for i, tr := range tracks {
		assert.Equal(t, fmt.Sprintf("Track %d", i+1), tr.Title)
	}
}

func TestSession_RestoreQueue_Empty(t *testing.T) {
	s, _ := newTestSession(Options{Queue: state.NewMock()})
	defer s.Close()

	assert.Nil(t, s.RestoreQueue())
	assert.True(t, s.IsEmpty())
}

func TestSession_ResumeFlow(t *testing.T) {
	pos := &positionStub{}
	pos.set(150*time.Second, 300*time.Second, true)
	s, backend := newTestSession(Options{Position: pos.fn, SaveInterval: time.Hour})
	defer s.Close()

	track := s.SetQueue(makeTracks(2), 0)
	require.NotNil(t, track)

	// Periodic save (driven manually here).
	s.SaveProgressNow()
	assert.Equal(t, 1, backend.Len())

	resumeAt, ok := s.ResumePosition(*track)
	assert.True(t, ok)
	assert.Equal(t, 150*time.Second, resumeAt)

	// Start over discards the stored position.
	s.StartOver(*track)
	_, ok = s.ResumePosition(*track)
	assert.False(t, ok)
}

func TestSession_SaveBelowThresholdDropped(t *testing.T) {
	pos := &positionStub{}
	pos.set(5*time.Second, 300*time.Second, true)
	s, backend := newTestSession(Options{Position: pos.fn, SaveInterval: time.Hour})
	defer s.Close()
	s.SetQueue(makeTracks(1), 0)

	s.SaveProgressNow()

	assert.Equal(t, 0, backend.Len(), "positions under the threshold are not persisted")
}

func TestSession_TrackFinished(t *testing.T) {
	pos := &positionStub{}
	pos.set(290*time.Second, 300*time.Second, true)
	s, backend := newTestSession(Options{Position: pos.fn, SaveInterval: time.Hour})
	defer s.Close()

	tracks := makeTracks(3)
	s.SetQueue(tracks, 0)

	// Simulate a mid-playback save that survived.
	s.Store().SaveProgress(resume.Progress{
		ItemIdentifier: tracks[0].ItemIdentifier,
		Filename:       tracks[0].Filename,
		Position:       150 * time.Second,
		Duration:       300 * time.Second,
	})
	require.Equal(t, 1, backend.Len())

	next := s.TrackFinished()

	require.NotNil(t, next)
	assert.Equal(t, "Track 2", next.Title)
	assert.Equal(t, 0, backend.Len(), "finished track's record is removed")
}

func TestSession_TrackFinished_RepeatOne(t *testing.T) {
	s, _ := newTestSession(Options{})
	defer s.Close()
	s.SetQueue(makeTracks(2), 1)
	s.SetRepeatMode(queue.RepeatOne)

	next := s.TrackFinished()

	require.NotNil(t, next)
	assert.Equal(t, "Track 2", next.Title, "repeat-one replays the same track")
	assert.Equal(t, 1, s.CurrentIndex())
}

func TestSession_TrackFinished_EndOfQueue(t *testing.T) {
	s, _ := newTestSession(Options{})
	defer s.Close()
	s.SetQueue(makeTracks(2), 1)

	assert.Nil(t, s.TrackFinished(), "queue exhausted with repeat off")
}

func TestSession_SaveTicker(t *testing.T) {
	pos := &positionStub{}
	pos.set(150*time.Second, 300*time.Second, true)
	s, backend := newTestSession(Options{Position: pos.fn, SaveInterval: 5 * time.Millisecond})
	defer s.Close()
	s.SetQueue(makeTracks(1), 0)

	require.Eventually(t, func() bool {
		return backend.Len() == 1
	}, time.Second, 5*time.Millisecond, "ticker should persist progress")
}

func TestSession_Close_FinalSave(t *testing.T) {
	pos := &positionStub{}
	pos.set(100*time.Second, 300*time.Second, true)
	s, backend := newTestSession(Options{Position: pos.fn, SaveInterval: time.Hour})
	tracks := makeTracks(1)
	s.SetQueue(tracks, 0)

	// Position advances just before teardown; the final save must catch it.
	pos.set(225*time.Second, 300*time.Second, true)
	require.NoError(t, s.Close())

	require.Equal(t, 1, backend.Len())
	p, err := backend.GetProgress(tracks[0].ItemIdentifier, tracks[0].Filename)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 225*time.Second, p.Position)

	// Close is idempotent.
	require.NoError(t, s.Close())
}

func TestSession_ProgressSavedEvent(t *testing.T) {
	pos := &positionStub{}
	pos.set(150*time.Second, 300*time.Second, true)
	s, _ := newTestSession(Options{Position: pos.fn, SaveInterval: time.Hour})
	defer s.Close()
	s.SetQueue(makeTracks(1), 0)
	sub := s.Subscribe()

	s.SaveProgressNow()

	select {
	case e := <-sub.ProgressSaved:
		assert.Equal(t, 150*time.Second, e.Progress.Position)
		assert.Equal(t, "gd1977", e.Progress.ItemIdentifier)
	case <-time.After(time.Second):
		t.Fatal("no ProgressSaved event")
	}
}

func TestSession_SubscriptionDoneOnClose(t *testing.T) {
	s, _ := newTestSession(Options{})
	sub := s.Subscribe()

	require.NoError(t, s.Close())

	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Fatal("Done channel not closed on session Close")
	}
}
