package agent

import (
	"fmt"
	"testing"

	"shorts-agent/types"
)

func TestHubDeliversInOrder(t *testing.T) {
	h := NewHub()
	events, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < 3; i++ {
		h.Log(fmt.Sprintf("msg-%d", i))
	}

	for i := 0; i < 3; i++ {
		ev := <-events
		if ev.Kind != types.EventLog {
			t.Fatalf("event kind = %s, want log", ev.Kind)
		}
		if want := fmt.Sprintf("msg-%d", i); ev.Data != want {
			t.Fatalf("event %d = %v, want %q", i, ev.Data, want)
		}
	}
}

func TestHubDropsForFullObserver(t *testing.T) {
	h := NewHub()
	events, cancel := h.Subscribe()
	defer cancel()

	// Publish past the buffer without draining: must not block, and the
	// overflow is dropped for this observer.
	for i := 0; i < subscriberBuffer+16; i++ {
		h.Log(fmt.Sprintf("msg-%d", i))
	}

	if got := len(events); got != subscriberBuffer {
		t.Fatalf("buffered events = %d, want %d", got, subscriberBuffer)
	}
}

func TestHubSlowObserverDoesNotStarveOthers(t *testing.T) {
	h := NewHub()
	slow, cancelSlow := h.Subscribe()
	defer cancelSlow()
	fast, cancelFast := h.Subscribe()
	defer cancelFast()

	for i := 0; i < subscriberBuffer+16; i++ {
		h.Log("tick")
	}
	// Drain the fast observer fully; the untouched slow observer must
	// not have affected it.
	for i := 0; i < subscriberBuffer; i++ {
		<-fast
	}
	if len(slow) != subscriberBuffer {
		t.Fatalf("slow observer buffered %d events, want %d", len(slow), subscriberBuffer)
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	events, cancel := h.Subscribe()

	h.Status("working")
	cancel()
	cancel() // idempotent

	// Drain the delivered event, then expect a closed channel.
	if ev := <-events; ev.Kind != types.EventStatus {
		t.Fatalf("event kind = %s, want status", ev.Kind)
	}
	if _, ok := <-events; ok {
		t.Fatal("channel still open after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	h.Error("late")
}

func TestHubStatePayload(t *testing.T) {
	h := NewHub()
	events, cancel := h.Subscribe()
	defer cancel()

	h.State(false)
	ev := <-events
	if ev.Kind != types.EventState {
		t.Fatalf("event kind = %s, want state", ev.Kind)
	}
	data, ok := ev.Data.(map[string]bool)
	if !ok || data["is_running"] {
		t.Fatalf("state payload = %v, want is_running=false", ev.Data)
	}
}
