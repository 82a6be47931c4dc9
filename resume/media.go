package resume

import (
	"path/filepath"
	"strings"
)

// videoExtensions covers the container formats the archive serves for
// its moving-image collections.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".mpg":  true,
	".mpeg": true,
	".ogv":  true,
	".webm": true,
}

// IsVideoFilename reports whether the filename looks like a video file.
// Anything else is treated as audio for continue-rail purposes.
func IsVideoFilename(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return videoExtensions[ext]
}
