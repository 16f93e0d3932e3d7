// Package notify fans transient user-facing messages out to subscribers.
// Messages are fire-and-forget: delivery is non-blocking and a slow
// subscriber drops messages rather than stalling the publisher.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Message is one transient, dismissible notification.
type Message struct {
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Hub is the in-process pub/sub for notifications.
type Hub struct {
	logger *slog.Logger

	mu          sync.Mutex
	subscribers map[chan Message]struct{}
	closed      bool
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:      logger,
		subscribers: make(map[chan Message]struct{}),
	}
}

// Subscribe returns a buffered channel of messages and a cancel function
// that must be called when the subscriber goes away.
func (h *Hub) Subscribe(buffer int) (<-chan Message, func()) {
	ch := make(chan Message, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// publish delivers to every subscriber without blocking. The sends happen
// under the lock: cancel and Close close channels under the same lock, so
// a channel can never be closed between snapshot and send.
func (h *Hub) publish(level Level, text string) {
	msg := Message{Level: level, Text: text, At: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.logger.Warn("subscriber channel full, dropping notification", "text", text)
		}
	}
}

// Info publishes an informational message.
func (h *Hub) Info(text string) {
	h.publish(LevelInfo, text)
}

// Error publishes a failure message.
func (h *Hub) Error(text string) {
	h.publish(LevelError, text)
}

// Close shuts the hub down; all subscriber channels are closed.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}
