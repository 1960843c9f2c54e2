// Package engine holds the in-memory event plumbing between background
// workers and live admin sessions.
package engine

import (
	"sync"

	"github.com/cheatloop/storefront/internal/domain"
)

// IntentEvent is pushed to subscribers whenever a purchase intent is seen for
// the first time.
type IntentEvent struct {
	Type   string                `json:"type"`
	Intent domain.PurchaseIntent `json:"intent"`
}

// IntentHub deduplicates incoming purchase intents by id and fans new ones
// out to subscribers (SSE clients). Delivery transport is irrelevant: the
// poller and any push source feed the same Merge, which is idempotent, so
// duplicate and overlapping deliveries collapse to one event per intent.
type IntentHub struct {
	mu          sync.RWMutex
	seen        map[string]struct{}
	subscribers map[string]chan IntentEvent
}

// NewIntentHub creates an empty hub.
func NewIntentHub() *IntentHub {
	return &IntentHub{
		seen:        make(map[string]struct{}),
		subscribers: make(map[string]chan IntentEvent),
	}
}

// Merge records the given intents, returning only those not seen before, in
// input order. New intents are published to all subscribers.
func (h *IntentHub) Merge(intents []domain.PurchaseIntent) []domain.PurchaseIntent {
	var fresh []domain.PurchaseIntent

	h.mu.Lock()
	for _, in := range intents {
		if in.ID == "" {
			continue
		}
		if _, ok := h.seen[in.ID]; ok {
			continue
		}
		h.seen[in.ID] = struct{}{}
		fresh = append(fresh, in)
	}
	h.mu.Unlock()

	for _, in := range fresh {
		h.fanOut(IntentEvent{Type: "intent.new", Intent: in})
	}
	return fresh
}

// Forget drops ids from the seen set, e.g. after intents are deleted, so a
// re-created intent with a recycled id would surface again.
func (h *IntentHub) Forget(ids []string) {
	h.mu.Lock()
	for _, id := range ids {
		delete(h.seen, id)
	}
	h.mu.Unlock()
}

// SeenCount returns how many distinct intents the hub has merged.
func (h *IntentHub) SeenCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.seen)
}

// Subscribe registers an SSE client for new-intent events.
func (h *IntentHub) Subscribe(id string) <-chan IntentEvent {
	ch := make(chan IntentEvent, 64)
	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes an SSE client and closes its channel.
func (h *IntentHub) Unsubscribe(id string) {
	h.mu.Lock()
	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
	h.mu.Unlock()
}

func (h *IntentHub) fanOut(e IntentEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subscribers {
		select {
		case ch <- e:
		default: // slow subscriber, drop rather than block the poller
		}
	}
}
