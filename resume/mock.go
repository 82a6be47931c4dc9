package resume

import (
	"errors"
	"sort"
	"sync"
)

// MemoryBackend is an in-memory Backend for tests. Safe for concurrent
// use so session save tickers can run against it.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[string]Progress
	failAll bool
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]Progress)}
}

var errMockFailure = errors.New("backend unavailable")

// SetFailAll makes every call return an error, for exercising the
// store's fail-open behavior.
func (m *MemoryBackend) SetFailAll(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAll = fail
}

func (m *MemoryBackend) SaveProgress(p Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockFailure
	}
	m.records[p.Key()] = p
	return nil
}

func (m *MemoryBackend) GetProgress(itemIdentifier, filename string) (*Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockFailure
	}
	if filename == "" {
		var latest *Progress
		for key, p := range m.records {
			if p.ItemIdentifier != itemIdentifier {
				continue
			}
			if latest == nil || p.UpdatedAt.After(latest.UpdatedAt) {
				record := m.records[key]
				latest = &record
			}
		}
		return latest, nil
	}
	p, ok := m.records[itemIdentifier+"/"+filename]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemoryBackend) DeleteProgress(itemIdentifier, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockFailure
	}
	delete(m.records, itemIdentifier+"/"+filename)
	return nil
}

func (m *MemoryBackend) ListProgress(video bool) ([]Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockFailure
	}
	var result []Progress
	for _, p := range m.records {
		if p.IsVideo == video {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// Len returns the number of stored records.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
