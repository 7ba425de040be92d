package ops

import (
	"sync"
	"time"

	"github.com/KazKozDev/ConText/internal/domain"
)

// EventType classifies messages pushed to UI subscribers.
type EventType string

const (
	EventTypeState  EventType = "state"
	EventTypeError  EventType = "error"
	EventTypeCopied EventType = "copied"
)

const defaultHistorySize = 500

// Event is a sequenced payload consumed by UI subscribers.
type Event struct {
	Seq       int64             `json:"seq"`
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"type"`
	Message   string            `json:"message,omitempty"`
	Error     *domain.ErrorInfo `json:"error,omitempty"`
	State     *domain.Snapshot  `json:"state,omitempty"`
}

// History turns committed session snapshots into a bounded, sequenced event
// log that pollers read incrementally.
type History struct {
	mu      sync.RWMutex
	ring    []Event
	oldest  int
	count   int
	lastSeq int64
	now     func() time.Time

	lastErr *domain.ErrorInfo
	copied  bool
}

// NewHistory keeps at most size events.
func NewHistory(size int) *History {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &History{
		ring: make([]Event, size),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Record appends a state event for snap. It also appends an error event when
// the visible error differs from the previous one, and a copied event when
// the copied flag rises. It returns the appended events in order.
func (h *History) Record(snap domain.Snapshot) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := []Event{h.appendLocked(Event{Type: EventTypeState, State: &snap})}

	if snap.LastError != nil && (h.lastErr == nil || *h.lastErr != *snap.LastError) {
		out = append(out, h.appendLocked(Event{
			Type:    EventTypeError,
			Message: snap.LastError.Message,
			Error:   snap.LastError,
		}))
	}
	h.lastErr = snap.LastError

	if snap.Copied && !h.copied {
		out = append(out, h.appendLocked(Event{Type: EventTypeCopied, Message: "Copied to clipboard"}))
	}
	h.copied = snap.Copied
	return out
}

// appendLocked overwrites the oldest entry once the ring is full.
func (h *History) appendLocked(ev Event) Event {
	h.lastSeq++
	ev.Seq = h.lastSeq
	if ev.Timestamp.IsZero() {
		ev.Timestamp = h.now()
	}

	if h.count < len(h.ring) {
		h.ring[(h.oldest+h.count)%len(h.ring)] = ev
		h.count++
	} else {
		h.ring[h.oldest] = ev
		h.oldest = (h.oldest + 1) % len(h.ring)
	}
	return ev
}

// Since returns retained events with sequence strictly greater than seq.
func (h *History) Since(seq int64) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Sequences are contiguous, so the first match is found by offset.
	first := h.lastSeq - int64(h.count) + 1
	skip := 0
	if seq >= first {
		skip = int(seq - first + 1)
	}
	if skip >= h.count {
		return []Event{}
	}

	out := make([]Event, 0, h.count-skip)
	for i := skip; i < h.count; i++ {
		out = append(out, h.ring[(h.oldest+i)%len(h.ring)])
	}
	return out
}
