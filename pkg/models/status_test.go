package models

import "testing"

// TestStatusOrdering verifies that statuses further along the lifecycle
// compare greater than earlier ones.
func TestStatusOrdering(t *testing.T) {
	order := []JobStatus{
		StatusUnknown, StatusRegistered, StatusSubmitted,
		StatusHeld, StatusQueued, StatusActive, StatusInactive, StatusError,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("expected %s < %s", order[i-1], order[i])
		}
	}
}

func TestStatusInFlight(t *testing.T) {
	inFlight := []JobStatus{StatusSubmitted, StatusHeld, StatusQueued, StatusActive}
	for _, st := range inFlight {
		if !st.InFlight() {
			t.Errorf("expected %s to be in flight", st)
		}
	}
	notInFlight := []JobStatus{StatusUnknown, StatusRegistered, StatusInactive, StatusError}
	for _, st := range notInFlight {
		if st.InFlight() {
			t.Errorf("expected %s to not be in flight", st)
		}
	}
}

// TestMergeForwardProgress verifies the monotonic status update rule.
func TestMergeForwardProgress(t *testing.T) {
	tests := []struct {
		old, observed, want JobStatus
	}{
		{StatusSubmitted, StatusQueued, StatusQueued},     // forward
		{StatusQueued, StatusSubmitted, StatusQueued},     // no backward motion
		{StatusActive, StatusActive, StatusActive},        // no change
		{StatusActive, StatusInactive, StatusInactive},    // terminal
		{StatusError, StatusInactive, StatusInactive},     // absence supersedes all
		{StatusInactive, StatusQueued, StatusInactive},    // inactive is sticky
		{StatusUnknown, StatusSubmitted, StatusSubmitted}, // initial observation
	}
	for _, tt := range tests {
		if got := Merge(tt.old, tt.observed); got != tt.want {
			t.Errorf("Merge(%s, %s) = %s, want %s", tt.old, tt.observed, got, tt.want)
		}
	}
}

func TestParseStatusRoundTrip(t *testing.T) {
	for st := StatusUnknown; st <= StatusError; st++ {
		parsed, err := ParseStatus(st.String())
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", st.String(), err)
		}
		if parsed != st {
			t.Errorf("ParseStatus(%q) = %s, want %s", st.String(), parsed, st)
		}
	}
	if _, err := ParseStatus("bogus"); err == nil {
		t.Error("expected error for unknown status name")
	}
}
