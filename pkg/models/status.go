package models

import (
	"encoding/json"
	"fmt"
)

// JobStatus is the lifecycle stage of a submitted operation or bundle.
// The numeric ordering is the lifecycle ordering; status updates only
// move forward (see Merge).
type JobStatus int

const (
	StatusUnknown JobStatus = iota
	StatusRegistered
	StatusSubmitted
	StatusHeld
	StatusQueued
	StatusActive
	StatusInactive
	StatusError
)

var statusNames = map[JobStatus]string{
	StatusUnknown:    "unknown",
	StatusRegistered: "registered",
	StatusSubmitted:  "submitted",
	StatusHeld:       "held",
	StatusQueued:     "queued",
	StatusActive:     "active",
	StatusInactive:   "inactive",
	StatusError:      "error",
}

func (s JobStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("jobstatus(%d)", int(s))
}

// ParseStatus is the inverse of String.
func ParseStatus(name string) (JobStatus, error) {
	for st, n := range statusNames {
		if n == name {
			return st, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown job status %q", name)
}

// InFlight reports whether the status describes a submission the
// scheduler still owns. In-flight operations are skipped on subsequent
// submission passes.
func (s JobStatus) InFlight() bool {
	return s >= StatusSubmitted && s <= StatusActive
}

// IsTerminal reports whether no further scheduler transitions are
// expected.
func (s JobStatus) IsTerminal() bool {
	return s == StatusInactive || s == StatusError
}

// Merge applies one status observation on top of a stored status.
// Updates are monotonic: an observation never moves a record backward,
// and inactive always wins since absence from the queue is final.
func Merge(old, observed JobStatus) JobStatus {
	if observed == StatusInactive {
		return StatusInactive
	}
	if old == StatusInactive {
		return StatusInactive
	}
	if observed > old {
		return observed
	}
	return old
}

// MarshalJSON encodes statuses by name so stored and exported records
// stay readable.
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	st, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ClusterJob is one entry in an external scheduler's queue as reported
// by its adapter.
type ClusterJob struct {
	SchedulerID string    `json:"scheduler_id"`
	Name        string    `json:"name"`
	Status      JobStatus `json:"status"`
}
