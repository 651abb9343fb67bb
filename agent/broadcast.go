package agent

import (
	"sync"

	"shorts-agent/types"
)

// subscriberBuffer bounds the per-observer event queue. When an observer
// falls this far behind, newer events are dropped for it alone.
const subscriberBuffer = 64

// Hub fans status events out to zero or more observers. Publishing never
// blocks: a full observer queue drops the event for that observer only,
// so a slow dashboard cannot stall the cycle.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan types.StatusEvent
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan types.StatusEvent)}
}

// Subscribe registers an observer and returns its event channel plus an
// unsubscribe function. The channel is closed on unsubscribe.
func (h *Hub) Subscribe() (<-chan types.StatusEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan types.StatusEvent, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every observer, in production order,
// dropping it for observers whose queue is full.
func (h *Hub) Publish(ev types.StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) Log(msg string) {
	h.Publish(types.StatusEvent{Kind: types.EventLog, Data: msg})
}

func (h *Hub) Status(action string) {
	h.Publish(types.StatusEvent{Kind: types.EventStatus, Data: action})
}

func (h *Hub) Error(msg string) {
	h.Publish(types.StatusEvent{Kind: types.EventError, Data: msg})
}

func (h *Hub) State(isRunning bool) {
	h.Publish(types.StatusEvent{Kind: types.EventState, Data: map[string]bool{"is_running": isRunning}})
}
