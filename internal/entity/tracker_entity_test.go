package entity

import "testing"

func TestTrackerMarkCompletedIsOneShot(t *testing.T) {
	tr := NewCompletionTracker()
	if !tr.MarkCompleted() {
		t.Fatal("first MarkCompleted returned false")
	}
	if tr.MarkCompleted() {
		t.Error("second MarkCompleted returned true")
	}
	if tr.State() != TrackerAwaitingConfirmation {
		t.Errorf("state = %v, want %v", tr.State(), TrackerAwaitingConfirmation)
	}
}

func TestTrackerConfirm(t *testing.T) {
	tr := NewCompletionTracker()

	// Confirming an incomplete form is an error.
	if _, err := tr.Confirm(); err != ErrFormIncomplete {
		t.Fatalf("Confirm while filling: err = %v, want %v", err, ErrFormIncomplete)
	}

	tr.MarkCompleted()
	fired, err := tr.Confirm()
	if err != nil || !fired {
		t.Fatalf("Confirm = %v, %v; want true, nil", fired, err)
	}

	// The download-ready notice is one-shot.
	fired, err = tr.Confirm()
	if err != nil || fired {
		t.Fatalf("second Confirm = %v, %v; want false, nil", fired, err)
	}

	tr.Close()
	if _, err := tr.Confirm(); err != ErrSessionNotFound {
		t.Errorf("Confirm after close: err = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestTrackerCloseIsTerminal(t *testing.T) {
	tr := NewCompletionTracker()
	if !tr.Close() {
		t.Fatal("first Close returned false")
	}
	if tr.Close() {
		t.Error("second Close returned true")
	}
	if tr.MarkCompleted() {
		t.Error("MarkCompleted after close returned true")
	}
	if tr.State() != TrackerClosed {
		t.Errorf("state = %v, want %v", tr.State(), TrackerClosed)
	}
}
