// Package ops tracks in-flight backend operations and records session events.
package ops

import (
	"errors"
	"sort"
	"sync"

	"github.com/KazKozDev/ConText/internal/domain"
)

// ErrPending is returned when an operation is already outstanding for its key.
var ErrPending = errors.New("operation already pending")

// ErrNotPending is returned when settling a key that is idle.
var ErrNotPending = errors.New("operation not pending")

// SessionWide is the slot used for operations that belong to the whole session.
const SessionWide domain.SlotID = ""

// Key identifies one (slot, kind) operation lane.
type Key struct {
	Slot domain.SlotID
	Kind domain.OperationKind
}

// State is the lifecycle position of one lane.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Tracker allows at most one pending operation per key.
// Idle -> Pending -> (settled) -> Idle; a second Begin while pending is rejected.
type Tracker struct {
	mu      sync.RWMutex
	pending map[Key]struct{}
}

// NewTracker creates a tracker with every lane idle.
func NewTracker() *Tracker {
	return &Tracker{pending: map[Key]struct{}{}}
}

// Begin moves key from idle to pending.
func (t *Tracker) Begin(key Key) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[key]; ok {
		return ErrPending
	}
	t.pending[key] = struct{}{}
	return nil
}

// Settle returns key to idle once its operation has finished.
func (t *Tracker) Settle(key Key) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[key]; !ok {
		return ErrNotPending
	}
	delete(t.pending, key)
	return nil
}

// State reports the lifecycle position of key.
func (t *Tracker) State(key Key) State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.pending[key]; ok {
		return StatePending
	}
	return StateIdle
}

// IsPending reports whether key is outstanding.
func (t *Tracker) IsPending(key Key) bool {
	return t.State(key) == StatePending
}

// Busy returns the pending kinds for slot in a stable order.
func (t *Tracker) Busy(slot domain.SlotID) []domain.OperationKind {
	t.mu.RLock()
	defer t.mu.RUnlock()

	kinds := make([]domain.OperationKind, 0, len(t.pending))
	for key := range t.pending {
		if key.Slot == slot {
			kinds = append(kinds, key.Kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Len returns the number of pending operations across all lanes.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pending)
}
