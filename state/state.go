// Package state persists playback state to a local SQLite database:
// per-file resume positions and a snapshot of the playing queue. It is
// the durable half of the playback core; policy lives in the resume and
// queue packages.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "arkplay"
	dbFileName   = "arkplay.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager owns the SQLite database. Queue snapshots are debounced so
// rapid navigation doesn't thrash the disk; resume records are written
// through immediately (their cadence is already throttled by the
// session's save timer).
type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *QueueState
}

// Open opens (creating if necessary) the database at the default
// XDG data location.
func Open() (*Manager, error) {
	dbPath, err := defaultDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at the given path, creating parent
// directories and initializing the schema as needed.
func OpenPath(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// Close flushes any pending queue snapshot and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		_ = saveQueue(m.db, *pending)
	}

	return m.db.Close()
}

// DB exposes the underlying handle for tests.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// SaveQueue schedules a debounced write of the queue snapshot. The
// last snapshot before the debounce window elapses wins; Close flushes
// whatever is still pending.
func (m *Manager) SaveQueue(state QueueState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveQueue(m.db, *pending)
		}
	})
}

// GetQueue returns the saved queue snapshot, or an empty snapshot if
// none was saved yet.
func (m *Manager) GetQueue() (*QueueState, error) {
	return getQueue(m.db)
}

func defaultDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
