package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	err := errors.New("disk full")

	got := Format(OpQueueSave, err)
	want := "Failed to save queue: disk full"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_NilError(t *testing.T) {
	if got := Format(OpQueueSave, nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty string", got)
	}
}

func TestFormatWith(t *testing.T) {
	err := errors.New("no such table")

	got := FormatWith(OpProgressLoad, "gd1977/t01.flac", err)
	want := "Failed to load playback position 'gd1977/t01.flac': no such table"
	if got != want {
		t.Errorf("FormatWith() = %q, want %q", got, want)
	}
}

func TestFormatWith_EmptyContext(t *testing.T) {
	err := errors.New("boom")

	got := FormatWith(OpQueueRestore, "", err)
	want := "Failed to restore queue: boom"
	if got != want {
		t.Errorf("FormatWith() = %q, want %q", got, want)
	}
}
