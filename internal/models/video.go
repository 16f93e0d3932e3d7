package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SubtitleTrack is one subtitle file attached to a video. The handle is
// owned by the video entry and revoked with it.
type SubtitleTrack struct {
	Label  string `json:"label"`
	Handle string `json:"handle"`
}

// VideoEntry is one imported video and its derived metadata.
// DurationSeconds and ThumbnailHandle start at their zero values and are
// filled in by background derivation; a failed derivation leaves them there.
type VideoEntry struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	MediaHandle     string          `json:"mediaHandle"`
	MimeType        string          `json:"mimeType"`
	SizeBytes       int64           `json:"sizeBytes"`
	DurationSeconds float64         `json:"durationSeconds"`
	ThumbnailHandle string          `json:"thumbnailHandle,omitempty"`
	SubtitleTracks  []SubtitleTrack `json:"subtitleTracks,omitempty"`
	ProgressSeconds float64         `json:"progressSeconds"`
}

// NewVideoEntry builds an entry for a freshly imported file. The id is
// random, never derived from the filename, so two imports of the same file
// cannot collide.
func NewVideoEntry(filename, mediaHandle, mimeType string, sizeBytes int64) *VideoEntry {
	return &VideoEntry{
		ID:          uuid.New().String(),
		Name:        StripExtension(filename),
		MediaHandle: mediaHandle,
		MimeType:    mimeType,
		SizeBytes:   sizeBytes,
	}
}

// StripExtension removes the final extension from a filename.
func StripExtension(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// FormatDuration renders a duration in seconds as MM:SS, or H:MM:SS for
// videos an hour or longer. Zero and negative durations render as "00:00".
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "00:00"
	}

	total := int(seconds)
	hh := total / 3600
	mm := (total % 3600) / 60
	ss := total % 60

	if hh > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hh, mm, ss)
	}
	return fmt.Sprintf("%02d:%02d", mm, ss)
}
