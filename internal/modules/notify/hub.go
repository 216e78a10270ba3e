// Package notify fans session-invalidation events out to connected
// clients, one live channel per identity.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Event vocabulary of the push channel. These two names are the entire
// wire-level contract; application events belong elsewhere.
const (
	EventConnected          = "connected"
	EventSessionInvalidated = "session_invalidated"
)

const channelBuffer = 16

// Channel is the server side of one live notification stream. The hub
// owns it; the transport pump drains Events until Done is closed.
type Channel struct {
	identity string
	events   chan string
	done     chan struct{}
	once     sync.Once
}

// Events yields named events to write to the transport.
func (ch *Channel) Events() <-chan string { return ch.events }

// Done is closed when the channel is superseded or explicitly closed.
func (ch *Channel) Done() <-chan struct{} { return ch.done }

func (ch *Channel) shutdown() {
	ch.once.Do(func() { close(ch.done) })
}

// Hub tracks at most one live channel per identity. Delivery is
// best-effort and at-most-once: events are advisory, the authoritative
// session state is always re-derivable via a status query.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		channels: make(map[string]*Channel),
		logger:   logger,
	}
}

// Open registers a new channel for identity, closing any superseded one
// before the new channel becomes active. A `connected` event is queued
// immediately so the client can confirm liveness.
func (h *Hub) Open(identity string) *Channel {
	ch := &Channel{
		identity: identity,
		events:   make(chan string, channelBuffer),
		done:     make(chan struct{}),
	}

	h.mu.Lock()
	if old, ok := h.channels[identity]; ok {
		old.shutdown()
	}
	h.channels[identity] = ch
	h.mu.Unlock()

	// Fresh buffered channel, cannot block.
	ch.events <- EventConnected

	h.logger.Info("notification channel opened", zap.String("identity", identity))
	return ch
}

// Send queues a named event for identity. Silent no-op when no channel is
// open; a congested channel drops the event rather than blocking.
func (h *Hub) Send(identity, event string) {
	h.mu.RLock()
	ch := h.channels[identity]
	h.mu.RUnlock()

	if ch == nil {
		return
	}

	select {
	case ch.events <- event:
		h.logger.Info("notification queued",
			zap.String("identity", identity),
			zap.String("event", event),
		)
	default:
		h.logger.Warn("notification dropped, channel congested",
			zap.String("identity", identity),
			zap.String("event", event),
		)
	}
}

// Close removes and closes the channel for identity if present.
func (h *Hub) Close(identity string) {
	h.mu.Lock()
	ch, ok := h.channels[identity]
	if ok {
		delete(h.channels, identity)
	}
	h.mu.Unlock()

	if ok {
		ch.shutdown()
		h.logger.Info("notification channel closed", zap.String("identity", identity))
	}
}

// Detach removes ch if it is still the live channel for identity. A
// superseded channel must not tear down its replacement on the way out.
func (h *Hub) Detach(identity string, ch *Channel) {
	h.mu.Lock()
	if current, ok := h.channels[identity]; ok && current == ch {
		delete(h.channels, identity)
	}
	h.mu.Unlock()
	ch.shutdown()
}

// IsOpen reports whether a live channel exists for identity.
func (h *Hub) IsOpen(identity string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.channels[identity]
	return ok
}
