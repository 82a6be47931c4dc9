package state

import (
	"sort"

	"github.com/jmorel/arkplay/resume"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	progress   map[string]resume.Progress
	queueState *QueueState
	queueSaves int
	closed     bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{progress: make(map[string]resume.Progress)}
}

func (m *Mock) SaveProgress(p resume.Progress) error {
	m.progress[p.Key()] = p
	return nil
}

func (m *Mock) GetProgress(itemIdentifier, filename string) (*resume.Progress, error) {
	if filename == "" {
		var latest *resume.Progress
		for key, p := range m.progress {
			if p.ItemIdentifier != itemIdentifier {
				continue
			}
			if latest == nil || p.UpdatedAt.After(latest.UpdatedAt) {
				record := m.progress[key]
				latest = &record
			}
		}
		return latest, nil
	}
	p, ok := m.progress[itemIdentifier+"/"+filename]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Mock) DeleteProgress(itemIdentifier, filename string) error {
	delete(m.progress, itemIdentifier+"/"+filename)
	return nil
}

func (m *Mock) ListProgress(video bool) ([]resume.Progress, error) {
	var records []resume.Progress
	for _, p := range m.progress {
		if p.IsVideo == video {
			records = append(records, p)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

func (m *Mock) SaveQueue(state QueueState) {
	m.queueState = &state
	m.queueSaves++
}

func (m *Mock) GetQueue() (*QueueState, error) {
	if m.queueState == nil {
		return &QueueState{}, nil
	}
	return m.queueState, nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetQueue(state *QueueState) { m.queueState = state }

func (m *Mock) QueueSaves() int { return m.queueSaves }

func (m *Mock) IsClosed() bool { return m.closed }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
