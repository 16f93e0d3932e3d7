package player

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/vidshelf/vidshelf/internal/models"
)

// Session is the state machine for one open video. Every command is safe
// on a closed session (no-op), mirroring controls acting before the media
// element is mounted.
type Session struct {
	sink        Sink
	interval    time.Duration
	onFirstPlay func()

	mu           sync.Mutex
	state        State
	closed       bool
	lastReported float64
	loopCancel   context.CancelFunc

	resumeAfterCapture bool
	feedbackTimer      *time.Timer

	// pending sink emissions, collected under mu and flushed after
	// unlock so sink callbacks can never deadlock against commands.
	pendingProgress *float64
	pendingWatched  bool
}

func newSession(entry *models.VideoEntry, sink Sink, interval time.Duration, onFirstPlay func()) *Session {
	if sink == nil {
		sink = NopSink{}
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if onFirstPlay == nil {
		onFirstPlay = func() {}
	}

	current := entry.ProgressSeconds
	if entry.DurationSeconds > 0 && current >= entry.DurationSeconds {
		current = 0
	}

	return &Session{
		sink:        sink,
		interval:    interval,
		onFirstPlay: onFirstPlay,
		state: State{
			VideoID:         entry.ID,
			CurrentTime:     current,
			Duration:        entry.DurationSeconds,
			Volume:          1,
			Speed:           1,
			ControlsVisible: true,
			OverlayVisible:  true,
			HasSubtitles:    len(entry.SubtitleTracks) > 0,
		},
		lastReported: math.Floor(current),
	}
}

// do runs one command under the lock, then flushes snapshot and pending
// emissions outside it.
func (s *Session) do(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn()

	state := s.snapshotLocked()
	progress := s.pendingProgress
	watched := s.pendingWatched
	s.pendingProgress = nil
	s.pendingWatched = false
	s.mu.Unlock()

	if watched {
		s.onFirstPlay()
		s.sink.Watched(state.VideoID)
	}
	if progress != nil {
		s.sink.ProgressChanged(state.VideoID, *progress)
	}
	s.sink.StateChanged(state)
}

func (s *Session) snapshotLocked() State {
	state := s.state
	if state.IsMuted {
		state.EffectiveVolume = 0
	} else {
		state.EffectiveVolume = state.Volume
	}
	return state
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Play starts playback. The first play of the session dismisses the
// thumbnail overlay, records the video into history, and enables autoplay
// for videos opened later in this watch session.
func (s *Session) Play() {
	s.do(func() {
		if s.state.HasEnded {
			return
		}
		if s.state.OverlayVisible {
			s.state.OverlayVisible = false
			s.pendingWatched = true
		}
		if !s.state.IsPlaying {
			s.state.IsPlaying = true
			s.startLoopLocked()
		}
	})
}

// Pause stops playback and the progress loop.
func (s *Session) Pause() {
	s.do(func() {
		if s.state.IsPlaying {
			s.state.IsPlaying = false
			s.stopLoopLocked()
		}
	})
}

// TogglePlay flips play/pause, or replays when the video has ended. The
// click-feedback icon is cosmetic and never affects playback state.
func (s *Session) TogglePlay() {
	if s.Snapshot().HasEnded {
		s.Replay()
		return
	}
	s.do(func() {
		if s.state.OverlayVisible {
			s.state.OverlayVisible = false
			s.pendingWatched = true
		}
		s.state.IsPlaying = !s.state.IsPlaying
		if s.state.IsPlaying {
			s.startLoopLocked()
		} else {
			s.stopLoopLocked()
		}
		s.showFeedbackLocked()
	})
}

// Replay restarts from the beginning; it is only reachable from the ended
// state and hides the controls.
func (s *Session) Replay() {
	s.do(func() {
		if !s.state.HasEnded {
			return
		}
		s.state.CurrentTime = 0
		s.state.HasEnded = false
		s.state.IsPlaying = true
		s.state.ControlsVisible = false
		s.lastReported = 0
		progress := 0.0
		s.pendingProgress = &progress
		s.startLoopLocked()
	})
}

// SeekTo moves the playhead, clamped to [0, duration]. Landing on the end
// enters the ended state; seeking away from it leaves the video paused.
func (s *Session) SeekTo(seconds float64) {
	s.do(func() {
		s.seekLocked(seconds)
	})
}

// SeekBy moves the playhead relative to its current position.
func (s *Session) SeekBy(delta float64) {
	s.do(func() {
		s.seekLocked(s.state.CurrentTime + delta)
	})
}

func (s *Session) seekLocked(target float64) {
	if target < 0 {
		target = 0
	}
	if s.state.Duration > 0 && target >= s.state.Duration {
		s.state.CurrentTime = s.state.Duration
		s.endLocked()
		return
	}

	s.state.CurrentTime = target
	s.state.HasEnded = false
	whole := math.Floor(target)
	s.lastReported = whole
	s.pendingProgress = &whole
}

func (s *Session) endLocked() {
	s.state.HasEnded = true
	if s.state.IsPlaying {
		s.state.IsPlaying = false
	}
	s.stopLoopLocked()
	s.lastReported = math.Floor(s.state.CurrentTime)
	duration := s.state.Duration
	s.pendingProgress = &duration
}

// SetVolume clamps to [0, 1]. Hitting exactly zero engages mute; raising
// the volume from a muted state disengages it.
func (s *Session) SetVolume(v float64) {
	s.do(func() {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		s.state.Volume = v
		if v == 0 {
			s.state.IsMuted = true
		} else if s.state.IsMuted {
			s.state.IsMuted = false
		}
	})
}

// VolumeBy nudges the volume by delta.
func (s *Session) VolumeBy(delta float64) {
	s.SetVolume(s.Snapshot().Volume + delta)
}

// ToggleMute flips mute without touching the stored volume.
func (s *Session) ToggleMute() {
	s.do(func() {
		s.state.IsMuted = !s.state.IsMuted
	})
}

// SetSpeed clamps the playback rate to [MinSpeed, MaxSpeed].
func (s *Session) SetSpeed(speed float64) {
	s.do(func() {
		if speed < MinSpeed {
			speed = MinSpeed
		}
		if speed > MaxSpeed {
			speed = MaxSpeed
		}
		s.state.Speed = speed
	})
}

// SetSpeedMenu opens or closes the speed selection menu.
func (s *Session) SetSpeedMenu(open bool) {
	s.do(func() {
		s.state.SpeedMenuOpen = open
	})
}

// ToggleSubtitles flips visibility of the first subtitle track. Without
// tracks it is a no-op.
func (s *Session) ToggleSubtitles() {
	s.do(func() {
		if !s.state.HasSubtitles {
			return
		}
		s.state.ShowSubtitles = !s.state.ShowSubtitles
	})
}

// ToggleFullscreen flips the fullscreen flag on user request.
func (s *Session) ToggleFullscreen() {
	s.do(func() {
		s.state.IsFullscreen = !s.state.IsFullscreen
	})
}

// SyncFullscreen corrects the flag after an out-of-band fullscreen change
// (for example the browser's Escape key), which the frontend reports.
func (s *Session) SyncFullscreen(active bool) {
	s.do(func() {
		s.state.IsFullscreen = active
	})
}

// SetControlsVisible shows or hides the control bar.
func (s *Session) SetControlsVisible(visible bool) {
	s.do(func() {
		s.state.ControlsVisible = visible
	})
}

// BeginCapture pauses playback, remembering whether it was playing, and
// opens the confirmation prompt for capturing the current frame.
func (s *Session) BeginCapture() {
	s.do(func() {
		if s.state.CapturePending {
			return
		}
		s.state.CapturePending = true
		s.resumeAfterCapture = s.state.IsPlaying
		if s.state.IsPlaying {
			s.state.IsPlaying = false
			s.stopLoopLocked()
		}
	})
}

// EndCapture closes the capture prompt. On confirm the visible frame is
// routed to the catalog as the new thumbnail. Playback resumes only if it
// was playing when capture began, whether or not the user confirmed.
func (s *Session) EndCapture(confirmed bool) error {
	s.mu.Lock()
	if s.closed || !s.state.CapturePending {
		s.mu.Unlock()
		return nil
	}
	s.state.CapturePending = false
	videoID := s.state.VideoID
	at := s.state.CurrentTime
	resume := s.resumeAfterCapture
	s.resumeAfterCapture = false
	s.mu.Unlock()

	var err error
	if confirmed {
		err = s.sink.CaptureFrame(videoID, at)
	}
	if resume {
		s.Play()
	} else {
		s.do(func() {})
	}
	return err
}

// HandleKey dispatches a keyboard shortcut. It reports whether the key was
// handled so the frontend can suppress the browser default for it.
func (s *Session) HandleKey(key string) bool {
	switch key {
	case "ArrowLeft":
		s.SeekBy(-SeekStep)
	case "ArrowRight":
		s.SeekBy(SeekStep)
	case "ArrowUp":
		s.VolumeBy(VolumeStep)
	case "ArrowDown":
		s.VolumeBy(-VolumeStep)
	case " ", "Space":
		s.TogglePlay()
	case "m", "M":
		s.ToggleMute()
	default:
		return false
	}
	return true
}

func (s *Session) showFeedbackLocked() {
	s.state.FeedbackVisible = true
	if s.feedbackTimer != nil {
		s.feedbackTimer.Stop()
	}
	s.feedbackTimer = time.AfterFunc(FeedbackDuration, func() {
		s.do(func() {
			s.state.FeedbackVisible = false
		})
	})
}

// startLoopLocked launches the progress loop. At most one loop per session
// is live; pause, end, and close all cancel it.
func (s *Session) startLoopLocked() {
	if s.loopCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.loopCancel = cancel
	go s.run(ctx)
}

func (s *Session) stopLoopLocked() {
	if s.loopCancel != nil {
		s.loopCancel()
		s.loopCancel = nil
	}
}

func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.advance(now.Sub(last).Seconds())
			last = now
		}
	}
}

// advance moves the playhead forward by dt wall seconds scaled by the
// playback rate. The externally observable progress is throttled to whole
// second changes and is monotonic while playing forward; only a seek may
// move it backward.
func (s *Session) advance(dt float64) {
	s.do(func() {
		if !s.state.IsPlaying || dt <= 0 {
			return
		}

		s.state.CurrentTime += dt * s.state.Speed
		if s.state.Duration > 0 && s.state.CurrentTime >= s.state.Duration {
			s.state.CurrentTime = s.state.Duration
			s.endLocked()
			return
		}

		if whole := math.Floor(s.state.CurrentTime); whole > s.lastReported {
			s.lastReported = whole
			s.pendingProgress = &whole
		}
	})
}

// Close tears the session down: the progress loop and feedback timer stop
// and every later command is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state.IsPlaying = false
	s.stopLoopLocked()
	if s.feedbackTimer != nil {
		s.feedbackTimer.Stop()
	}
	s.mu.Unlock()
}
