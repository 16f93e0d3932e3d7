package player

import (
	"sync"
	"time"

	"github.com/vidshelf/vidshelf/internal/models"
)

// Manager holds the single live session. Opening a video closes the
// previous session first, so no player state leaks across videos. The one
// exception is the autoplay flag: once the user has pressed play, every
// video opened later in the watch session starts playing immediately. The
// flag is one-way and only dies with the manager.
type Manager struct {
	sink     Sink
	interval time.Duration

	mu       sync.Mutex
	current  *Session
	autoplay bool
}

func NewManager(sink Sink, interval time.Duration) *Manager {
	return &Manager{sink: sink, interval: interval}
}

// Open starts a fresh session for the entry (remount semantics).
func (m *Manager) Open(entry *models.VideoEntry) *Session {
	m.mu.Lock()
	if m.current != nil {
		m.current.Close()
	}
	session := newSession(entry, m.sink, m.interval, m.noteFirstPlay)
	m.current = session
	autoplay := m.autoplay
	m.mu.Unlock()

	if autoplay {
		session.Play()
	}
	return session
}

// Current returns the live session, nil if no video is open.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) noteFirstPlay() {
	m.mu.Lock()
	m.autoplay = true
	m.mu.Unlock()
}

// AutoplayEnabled reports whether a play has happened this watch session.
func (m *Manager) AutoplayEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autoplay
}

// Close ends the watch session.
func (m *Manager) Close() {
	m.mu.Lock()
	session := m.current
	m.current = nil
	m.autoplay = false
	m.mu.Unlock()

	if session != nil {
		session.Close()
	}
}
