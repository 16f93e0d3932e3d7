// Package player is the playback state machine for the one currently open
// video. It owns the playhead: while playing, a cancelable ticker advances
// it and throttled whole-second progress flows back into the catalog.
package player

import "time"

const (
	// SeekStep is the keyboard seek distance in seconds.
	SeekStep = 10.0
	// VolumeStep is the keyboard volume increment.
	VolumeStep = 0.1

	MinSpeed = 0.05
	MaxSpeed = 2.0

	// FeedbackDuration is how long the cosmetic play/pause click icon
	// stays visible.
	FeedbackDuration = 500 * time.Millisecond

	// DefaultTickInterval drives the progress loop.
	DefaultTickInterval = 100 * time.Millisecond
)

// SpeedPresets are the coarse playback-rate options the UI offers next to
// the continuous slider.
var SpeedPresets = []float64{0.25, 0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// State is a snapshot of the player. Several flags can be true at once;
// playback state is a combination, not a single enum.
type State struct {
	VideoID         string  `json:"videoId"`
	IsPlaying       bool    `json:"isPlaying"`
	HasEnded        bool    `json:"hasEnded"`
	CurrentTime     float64 `json:"currentTime"`
	Duration        float64 `json:"duration"`
	Volume          float64 `json:"volume"`
	IsMuted         bool    `json:"isMuted"`
	EffectiveVolume float64 `json:"effectiveVolume"`
	Speed           float64 `json:"speed"`
	IsFullscreen    bool    `json:"isFullscreen"`
	ControlsVisible bool    `json:"controlsVisible"`
	OverlayVisible  bool    `json:"overlayVisible"`
	SpeedMenuOpen   bool    `json:"speedMenuOpen"`
	ShowSubtitles   bool    `json:"showSubtitles"`
	HasSubtitles    bool    `json:"hasSubtitles"`
	FeedbackVisible bool    `json:"feedbackVisible"`
	CapturePending  bool    `json:"capturePending"`
}

// Sink receives everything the player pushes outward: state snapshots for
// the UI, throttled progress and watch events for the catalog and history,
// and frame-capture requests for the thumbnail flow.
type Sink interface {
	StateChanged(state State)
	ProgressChanged(videoID string, seconds float64)
	Watched(videoID string)
	CaptureFrame(videoID string, atSeconds float64) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) StateChanged(State)                 {}
func (NopSink) ProgressChanged(string, float64)    {}
func (NopSink) Watched(string)                     {}
func (NopSink) CaptureFrame(string, float64) error { return nil }
