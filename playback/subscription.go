package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber. Channels are
// buffered and events are dropped rather than blocking the session.
type Subscription struct {
	TrackChanged  <-chan TrackChange
	QueueChanged  <-chan QueueChange
	ModeChanged   <-chan ModeChange
	ProgressSaved <-chan ProgressSaved
	Error         <-chan ErrorEvent
	Done          <-chan struct{}

	// Internal write channels
	trackCh    chan TrackChange
	queueCh    chan QueueChange
	modeCh     chan ModeChange
	progressCh chan ProgressSaved
	errorCh    chan ErrorEvent
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		trackCh:    make(chan TrackChange, eventBufferSize),
		queueCh:    make(chan QueueChange, eventBufferSize),
		modeCh:     make(chan ModeChange, eventBufferSize),
		progressCh: make(chan ProgressSaved, eventBufferSize),
		errorCh:    make(chan ErrorEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.TrackChanged = s.trackCh
	s.QueueChanged = s.queueCh
	s.ModeChanged = s.modeCh
	s.ProgressSaved = s.progressCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendTrack sends a track change event (non-blocking).
func (s *Subscription) sendTrack(e TrackChange) {
	select {
	case s.trackCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendQueue sends a queue change event (non-blocking).
func (s *Subscription) sendQueue(e QueueChange) {
	select {
	case s.queueCh <- e:
	default:
	}
}

// sendMode sends a mode change event (non-blocking).
func (s *Subscription) sendMode(e ModeChange) {
	select {
	case s.modeCh <- e:
	default:
	}
}

// sendProgress sends a progress-saved event (non-blocking).
func (s *Subscription) sendProgress(e ProgressSaved) {
	select {
	case s.progressCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
