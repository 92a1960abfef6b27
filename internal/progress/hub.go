// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress fans pipeline progress events out to UI subscribers.
// Delivery is best effort: there is no replay for late subscribers and a
// subscriber that falls behind loses events rather than slowing a run.
package progress

import (
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// DefaultBuffer is the per-subscriber channel size used when Subscribe is
// called with a non-positive buffer.
const DefaultBuffer = 64

// Subscription is one subscriber's view of the hub.
type Subscription struct {
	id uint64
	ch chan types.ProgressEvent
}

// Events returns the channel events are delivered on. It is closed by
// Unsubscribe and by Hub.Close.
func (s *Subscription) Events() <-chan types.ProgressEvent {
	return s.ch
}

// Hub is a process-wide publish/subscribe fan-out of progress events.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
	log    *zap.Logger
}

// NewHub returns an empty hub.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{subs: make(map[uint64]*Subscription), log: log}
}

// Subscribe registers a new subscriber that receives every event published
// from now on.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscription{ch: make(chan types.ProgressEvent, buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	metrics.ProgressSubscribers.Inc()
	return sub
}

// Unsubscribe removes sub and closes its channel. It is safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.ch)
	metrics.ProgressSubscribers.Dec()
}

// Publish delivers event to every current subscriber without blocking.
// Events for a subscriber whose buffer is full are dropped.
func (h *Hub) Publish(event types.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			metrics.ProgressEventsDropped.Inc()
			h.log.Warn("dropped progress event for slow subscriber",
				zap.Uint64("subscriber", sub.id),
				zap.String("run_id", event.RunID),
				zap.String("stage", string(event.Stage)))
		}
	}
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes everyone. Later subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
		metrics.ProgressSubscribers.Dec()
	}
	h.closed = true
}

// Publisher is anything that accepts progress events.
type Publisher interface {
	Publish(event types.ProgressEvent)
}

// Multi publishes each event to every publisher in order.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(event types.ProgressEvent) {
	for _, p := range m {
		p.Publish(event)
	}
}
