// FILE: internal/entity/tracker_entity.go
package entity

type TrackerState string

const (
	TrackerFilling              TrackerState = "filling"
	TrackerAwaitingConfirmation TrackerState = "awaiting_confirmation"
	TrackerReady                TrackerState = "ready"
	TrackerClosed               TrackerState = "closed"
)

// CompletionTracker is the forward-only completion/confirmation state machine
// for one session. No state moves backward; Closed is terminal. The owning
// Session's lock serializes all transitions, which is what makes the one-shot
// guarantees hold under concurrent updates.
type CompletionTracker struct {
	state TrackerState
}

func NewCompletionTracker() *CompletionTracker {
	return &CompletionTracker{state: TrackerFilling}
}

func (t *CompletionTracker) State() TrackerState {
	return t.state
}

// MarkCompleted fires the Filling -> AwaitingConfirmation transition. Returns
// true only on the first call; the completion notice must be emitted exactly
// once per session.
func (t *CompletionTracker) MarkCompleted() bool {
	if t.state != TrackerFilling {
		return false
	}
	t.state = TrackerAwaitingConfirmation
	return true
}

// Confirm fires AwaitingConfirmation -> Ready. Confirming before the form is
// complete is an error; confirming twice is a no-op (the download-ready notice
// is one-shot).
func (t *CompletionTracker) Confirm() (bool, error) {
	switch t.state {
	case TrackerAwaitingConfirmation:
		t.state = TrackerReady
		return true, nil
	case TrackerReady:
		return false, nil
	case TrackerClosed:
		return false, ErrSessionNotFound
	default:
		return false, ErrFormIncomplete
	}
}

// Close moves any state to Closed. Returns true on the transition, false if
// already closed.
func (t *CompletionTracker) Close() bool {
	if t.state == TrackerClosed {
		return false
	}
	t.state = TrackerClosed
	return true
}
