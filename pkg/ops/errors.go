package ops

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateOperation is returned when an operation name is
	// registered twice directly on the same registry level.
	ErrDuplicateOperation = errors.New("operation already registered")

	// ErrDuplicateLabel is the label counterpart of ErrDuplicateOperation.
	ErrDuplicateLabel = errors.New("label already registered")
)

// PredicateError wraps a predicate failure with enough context to report
// which operation or label misbehaved on which job.
type PredicateError struct {
	Kind  string // "operation" or "label"
	Name  string
	JobID string
	Err   error
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("%s %q: predicate failed for job %s: %v", e.Kind, e.Name, e.JobID, e.Err)
}

func (e *PredicateError) Unwrap() error {
	return e.Err
}
