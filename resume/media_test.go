package resume

import "testing"

func TestIsVideoFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"plan9.mp4", true},
		{"feature.MKV", true},
		{"newsreel.ogv", true},
		{"episode.webm", true},
		{"gd77-05-08d1t01.flac", false},
		{"track01.mp3", false},
		{"lecture.ogg", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := IsVideoFilename(tt.filename); got != tt.want {
			t.Errorf("IsVideoFilename(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
