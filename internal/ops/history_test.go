package ops

import (
	"testing"

	"github.com/KazKozDev/ConText/internal/domain"
)

func eventTypes(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

// TestHistoryRecordDerivesEdges verifies error and copied events fire once per change.
func TestHistoryRecordDerivesEdges(t *testing.T) {
	h := NewHistory(10)
	down := &domain.ErrorInfo{Operation: domain.OpTranslate, Message: "down"}

	steps := []struct {
		snap domain.Snapshot
		want []EventType
	}{
		{domain.Snapshot{Version: 1}, []EventType{EventTypeState}},
		{domain.Snapshot{Version: 2, LastError: down}, []EventType{EventTypeState, EventTypeError}},
		{domain.Snapshot{Version: 3, LastError: &domain.ErrorInfo{Operation: domain.OpTranslate, Message: "down"}}, []EventType{EventTypeState}},
		{domain.Snapshot{Version: 4, Copied: true}, []EventType{EventTypeState, EventTypeCopied}},
		{domain.Snapshot{Version: 5, Copied: true}, []EventType{EventTypeState}},
		{domain.Snapshot{Version: 6, LastError: down}, []EventType{EventTypeState, EventTypeError}},
	}
	for i, step := range steps {
		got := eventTypes(h.Record(step.snap))
		if len(got) != len(step.want) {
			t.Fatalf("step %d: events = %v, want %v", i, got, step.want)
		}
		for j := range got {
			if got[j] != step.want[j] {
				t.Fatalf("step %d: events = %v, want %v", i, got, step.want)
			}
		}
	}
}

// TestHistorySince verifies incremental reads by sequence.
func TestHistorySince(t *testing.T) {
	h := NewHistory(10)
	h.Record(domain.Snapshot{Version: 1})
	h.Record(domain.Snapshot{Version: 2, LastError: &domain.ErrorInfo{Operation: domain.OpTranslate, Message: "down"}})

	events := h.Since(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 2 || events[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", events)
	}
	if events[1].Error.Operation != domain.OpTranslate {
		t.Fatalf("error event = %+v", events[1])
	}
	if got := h.Since(3); len(got) != 0 {
		t.Fatalf("Since(latest) = %+v, want none", got)
	}
}

// TestHistoryCapsRetention verifies the oldest events are overwritten.
func TestHistoryCapsRetention(t *testing.T) {
	h := NewHistory(2)
	for v := int64(1); v <= 3; v++ {
		h.Record(domain.Snapshot{Version: v})
	}

	events := h.Since(0)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].State.Version != 2 || events[1].State.Version != 3 {
		t.Fatalf("versions = %d, %d, want 2, 3", events[0].State.Version, events[1].State.Version)
	}
	if events[0].Seq != 2 {
		t.Fatalf("seq = %d, want 2", events[0].Seq)
	}
}
