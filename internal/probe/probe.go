// Package probe extracts duration and still frames from media files.
// Derivation failures are absorbed: callers get sentinel values, never
// errors, so a broken or undecodable file cannot fail an import.
package probe

import "context"

// Prober derives metadata from a media file on disk.
type Prober interface {
	// Duration returns the media duration in seconds, 0 on any failure.
	Duration(ctx context.Context, path string) float64
	// FrameAt captures a JPEG still at the given offset. ok is false on
	// any failure.
	FrameAt(ctx context.Context, path string, seconds float64) (data []byte, ok bool)
}

// Unavailable is the prober used when ffmpeg is not installed. Every
// derivation yields its sentinel, so the library works without thumbnails
// or durations.
type Unavailable struct{}

func (Unavailable) Duration(context.Context, string) float64 { return 0 }

func (Unavailable) FrameAt(context.Context, string, float64) ([]byte, bool) { return nil, false }
