package events

import (
	"sync"
	"time"
)

// Kind names a domain event the engine emits for external
// notifier/ERP collaborators. The engine does not retry delivery;
// downstream reliability is the subscriber's problem.
type Kind string

const (
	KindLeaveApproved     Kind = "leave_approved"
	KindDailySummaryReady Kind = "daily_summary_ready"
	KindKpiRed            Kind = "kpi_red"
)

// Event is one emitted domain event, scoped to a company.
type Event struct {
	Kind      Kind
	CompanyID string
	EmittedAt time.Time
	Payload   interface{}
}

// Hub is an in-process publish/subscribe fan-out keyed by event kind.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[Kind]map[chan Event]struct{}
}

// NewHub creates a new event Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[Kind]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber for an event kind and returns the
// channel and a cleanup function.
func (h *Hub) Subscribe(kind Kind) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)

	if h.subscribers[kind] == nil {
		h.subscribers[kind] = make(map[chan Event]struct{})
	}
	h.subscribers[kind][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[kind], ch)
		close(ch)
		if len(h.subscribers[kind]) == 0 {
			delete(h.subscribers, kind)
		}
	}

	return ch, cleanup
}

// Publish sends an event to every subscriber of its kind. Full
// subscriber channels are skipped rather than blocking the emitter.
func (h *Hub) Publish(ev Event) {
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[ev.Kind] {
		select {
		case ch <- ev:
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
}

// SubscriberCount returns the number of active subscribers for a kind.
func (h *Hub) SubscriberCount(kind Kind) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[kind])
}
