package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/jmorel/arkplay/internal/db"
)

// QueueTrack is a persisted track row. It mirrors queue.Track so the
// storage schema is decoupled from the engine's in-memory type.
type QueueTrack struct {
	TrackID        string
	ItemIdentifier string
	Filename       string
	Title          string
	Artist         string
	Album          string
	TrackNumber    int
	Duration       time.Duration
	StreamURL      string
	ThumbnailURL   string
}

// QueueState is the persisted queue snapshot. Tracks holds the original
// (un-shuffled) order; CurrentTrackID identifies the playing track so a
// restore can reposition regardless of shuffle.
type QueueState struct {
	CurrentTrackID string
	RepeatMode     int
	Shuffle        bool
	Tracks         []QueueTrack
}

func getQueue(db *sql.DB) (*QueueState, error) {
	var state QueueState
	var currentID sql.NullString
	row := db.QueryRow(`SELECT current_track_id, repeat_mode, shuffle FROM queue_state WHERE id = 1`)
	err := row.Scan(&currentID, &state.RepeatMode, &state.Shuffle)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{}, nil
	}
	if err != nil {
		return nil, err
	}
	state.CurrentTrackID = dbutil.NullStringValue(currentID)

	rows, err := db.Query(`
		SELECT track_id, item_identifier, filename, title, artist, album, track_number, duration_ms, stream_url, thumbnail_url
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t QueueTrack
		var artist, album, thumbnail sql.NullString
		var trackNumber, durationMS sql.NullInt64

		err := rows.Scan(&t.TrackID, &t.ItemIdentifier, &t.Filename, &t.Title,
			&artist, &album, &trackNumber, &durationMS, &t.StreamURL, &thumbnail)
		if err != nil {
			return nil, err
		}

		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		t.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
		t.Duration = time.Duration(dbutil.NullInt64Value(durationMS)) * time.Millisecond
		t.ThumbnailURL = dbutil.NullStringValue(thumbnail)
		state.Tracks = append(state.Tracks, t)
	}

	return &state, rows.Err()
}

func saveQueue(sqlDB *sql.DB, state QueueState) error {
	return dbutil.WithTx(sqlDB, func(tx *sql.Tx) error {
		// Clear existing queue
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_track_id, repeat_mode, shuffle)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_track_id = excluded.current_track_id,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle
		`, nullable(state.CurrentTrackID), state.RepeatMode, state.Shuffle)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_tracks
				(position, track_id, item_identifier, filename, title, artist, album, track_number, duration_ms, stream_url, thumbnail_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range state.Tracks {
			var trackNumber any
			if t.TrackNumber > 0 {
				trackNumber = t.TrackNumber
			}
			var durationMS any
			if t.Duration > 0 {
				durationMS = t.Duration.Milliseconds()
			}
			_, err = stmt.Exec(i, t.TrackID, t.ItemIdentifier, t.Filename, t.Title,
				nullable(t.Artist), nullable(t.Album), trackNumber, durationMS,
				t.StreamURL, nullable(t.ThumbnailURL))
			if err != nil {
				return err
			}
		}
		return nil
	})
}
