package queue

import "time"

// Track represents a single playable file from an archive item.
// Tracks are immutable values; identity is carried by ID alone.
type Track struct {
	ID             string // "{itemIdentifier}/{filename}", stable across sessions
	ItemIdentifier string
	Filename       string
	Title          string
	Artist         string
	Album          string
	TrackNumber    int
	Duration       time.Duration // 0 if unknown
	StreamURL      string
	ThumbnailURL   string
}

// TrackID builds the stable track identity for an item file.
func TrackID(itemIdentifier, filename string) string {
	return itemIdentifier + "/" + filename
}

// Same reports whether two tracks refer to the same file.
// Only ID is compared; metadata fields may differ between loads.
func (t Track) Same(other Track) bool {
	return t.ID == other.ID
}
