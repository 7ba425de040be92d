package ops

import (
	"errors"
	"testing"

	"github.com/KazKozDev/ConText/internal/domain"
)

// TestTrackerLifecycle verifies idle -> pending -> idle.
func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	key := Key{Slot: domain.SlotSource, Kind: domain.OpSummarize}
	if tr.IsPending(key) {
		t.Fatal("new tracker should be idle")
	}

	if err := tr.Begin(key); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if tr.State(key) != StatePending {
		t.Fatalf("state = %s, want pending", tr.State(key))
	}
	if err := tr.Settle(key); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if tr.State(key) != StateIdle {
		t.Fatalf("state = %s, want idle", tr.State(key))
	}
}

// TestTrackerRejectsSecondBegin checks the one-pending-per-key rule.
func TestTrackerRejectsSecondBegin(t *testing.T) {
	tr := NewTracker()
	key := Key{Slot: SessionWide, Kind: domain.OpTranslate}
	if err := tr.Begin(key); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tr.Begin(key); !errors.Is(err, ErrPending) {
		t.Fatalf("second begin error = %v, want %v", err, ErrPending)
	}
	if err := tr.Settle(key); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := tr.Settle(key); !errors.Is(err, ErrNotPending) {
		t.Fatalf("second settle error = %v, want %v", err, ErrNotPending)
	}
}

// TestTrackerIndependentLanes checks kinds and slots do not block each other.
func TestTrackerIndependentLanes(t *testing.T) {
	tr := NewTracker()
	for _, key := range []Key{
		{Slot: domain.SlotSource, Kind: domain.OpSummarize},
		{Slot: domain.SlotSource, Kind: domain.OpSpeak},
		{Slot: domain.SlotTarget, Kind: domain.OpSummarize},
	} {
		if err := tr.Begin(key); err != nil {
			t.Fatalf("begin %+v: %v", key, err)
		}
	}

	busy := tr.Busy(domain.SlotSource)
	if len(busy) != 2 || busy[0] != domain.OpSpeak || busy[1] != domain.OpSummarize {
		t.Fatalf("source busy = %v", busy)
	}
	if tr.Len() != 3 {
		t.Fatalf("len = %d, want 3", tr.Len())
	}
}
