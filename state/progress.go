package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/jmorel/arkplay/internal/db"
	"github.com/jmorel/arkplay/resume"
)

// Manager is the SQLite resume.Backend.
var _ resume.Backend = (*Manager)(nil)

// SaveProgress upserts the resume record keyed by (item, filename).
func (m *Manager) SaveProgress(p resume.Progress) error {
	_, err := m.db.Exec(`
		INSERT INTO playback_progress
			(item_identifier, filename, position_ms, duration_ms, title, thumbnail_url, is_video, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_identifier, filename) DO UPDATE SET
			position_ms = excluded.position_ms,
			duration_ms = excluded.duration_ms,
			title = excluded.title,
			thumbnail_url = excluded.thumbnail_url,
			is_video = excluded.is_video,
			updated_at = excluded.updated_at
	`, p.ItemIdentifier, p.Filename,
		p.Position.Milliseconds(), p.Duration.Milliseconds(),
		p.Title, nullable(p.ThumbnailURL), p.IsVideo, p.UpdatedAt.UnixMilli())
	return err
}

// GetProgress returns the stored record, or nil if none exists. An
// empty filename selects the item's most recently updated record.
func (m *Manager) GetProgress(itemIdentifier, filename string) (*resume.Progress, error) {
	var row *sql.Row
	if filename == "" {
		row = m.db.QueryRow(`
			SELECT item_identifier, filename, position_ms, duration_ms, title, thumbnail_url, is_video, updated_at
			FROM playback_progress
			WHERE item_identifier = ?
			ORDER BY updated_at DESC
			LIMIT 1
		`, itemIdentifier)
	} else {
		row = m.db.QueryRow(`
			SELECT item_identifier, filename, position_ms, duration_ms, title, thumbnail_url, is_video, updated_at
			FROM playback_progress
			WHERE item_identifier = ? AND filename = ?
		`, itemIdentifier, filename)
	}

	p, err := scanProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProgress removes the record unconditionally.
func (m *Manager) DeleteProgress(itemIdentifier, filename string) error {
	_, err := m.db.Exec(`
		DELETE FROM playback_progress
		WHERE item_identifier = ? AND filename = ?
	`, itemIdentifier, filename)
	return err
}

// ListProgress returns all records of the given media kind, most
// recently updated first.
func (m *Manager) ListProgress(video bool) ([]resume.Progress, error) {
	rows, err := m.db.Query(`
		SELECT item_identifier, filename, position_ms, duration_ms, title, thumbnail_url, is_video, updated_at
		FROM playback_progress
		WHERE is_video = ?
		ORDER BY updated_at DESC
	`, video)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []resume.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *p)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*resume.Progress, error) {
	var p resume.Progress
	var positionMS, durationMS, updatedMS int64
	var thumbnail sql.NullString

	err := row.Scan(&p.ItemIdentifier, &p.Filename, &positionMS, &durationMS,
		&p.Title, &thumbnail, &p.IsVideo, &updatedMS)
	if err != nil {
		return nil, err
	}

	p.Position = time.Duration(positionMS) * time.Millisecond
	p.Duration = time.Duration(durationMS) * time.Millisecond
	p.ThumbnailURL = dbutil.NullStringValue(thumbnail)
	p.UpdatedAt = time.UnixMilli(updatedMS)
	return &p, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
