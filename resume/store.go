// Package resume persists per-file playback positions so content can be
// resumed where the user left off across app launches.
//
// The store is a policy layer over a small persistence backend. Its read
// path fails open: any backend error is reported as "no resume data",
// so the worst outcome is playback starting from the beginning. Resume
// is a convenience and must never block playback.
package resume

import "time"

// Backend is the persistence capability the store requires. The state
// package provides a SQLite implementation; tests use an in-memory map.
// Keys must be stable across restarts (derived from item identifier and
// filename, never from object identity).
type Backend interface {
	SaveProgress(p Progress) error
	// GetProgress returns the record for the file, or nil if none is
	// stored. An empty filename selects the item's most recently
	// updated record (single-file items are often opened by item
	// identifier alone).
	GetProgress(itemIdentifier, filename string) (*Progress, error)
	DeleteProgress(itemIdentifier, filename string) error
	// ListProgress returns records for the given media kind,
	// most recently updated first.
	ListProgress(video bool) ([]Progress, error)
}

// Store applies resume policy on top of a Backend.
//
// Mutating calls are expected from a single goroutine at a time (the
// playback session serializes them); the backend handles its own
// durability.
type Store struct {
	backend Backend
	policy  Policy
	now     func() time.Time
}

// NewStore creates a store over the given backend with the given policy.
func NewStore(backend Backend, policy Policy) *Store {
	return &Store{
		backend: backend,
		policy:  policy,
		now:     time.Now,
	}
}

// Policy returns the store's thresholds.
func (s *Store) Policy() Policy {
	return s.policy
}

// SaveProgress upserts the record for (ItemIdentifier, Filename).
// Saves with an unknown duration, a negative position, or a position
// below the resume threshold are silently dropped; nothing is stored
// that could later yield a nonsensical percentage. Backend write
// failures are swallowed.
func (s *Store) SaveProgress(p Progress) {
	if p.Duration <= 0 || p.Position < 0 {
		return
	}
	if p.Position < s.policy.MinResume {
		return
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now()
	}
	_ = s.backend.SaveProgress(p)
}

// GetProgress returns the resumable record for the given file, or nil
// if there is none, if the record is complete, or if it sits below the
// resume threshold. An empty filename selects the item's most recently
// updated record. This is the single gate for "Resume" vs "Play".
func (s *Store) GetProgress(itemIdentifier, filename string) *Progress {
	p, err := s.backend.GetProgress(itemIdentifier, filename)
	if err != nil || p == nil {
		return nil
	}
	if !s.policy.Resumable(*p) {
		return nil
	}
	return p
}

// RemoveProgress deletes the record unconditionally. Called on natural
// completion and on an explicit "start over". Backend failures are
// swallowed.
func (s *Store) RemoveProgress(itemIdentifier, filename string) {
	_ = s.backend.DeleteProgress(itemIdentifier, filename)
}

// ContinueWatching returns resumable video records, most recently
// updated first.
func (s *Store) ContinueWatching() []Progress {
	return s.list(true)
}

// ContinueListening returns resumable audio records, most recently
// updated first.
func (s *Store) ContinueListening() []Progress {
	return s.list(false)
}

func (s *Store) list(video bool) []Progress {
	records, err := s.backend.ListProgress(video)
	if err != nil {
		return nil
	}
	result := make([]Progress, 0, len(records))
	for _, p := range records {
		if s.policy.Resumable(p) {
			result = append(result, p)
		}
	}
	return result
}
