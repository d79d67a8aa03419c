package scheduling

import (
	"context"
	"fmt"

	"github.com/flowforge/flowforge/pkg/models"
)

// NullScheduler is the fallback adapter when no compute environment is
// detected. Submissions fail loudly rather than silently disappearing;
// the queue view is empty.
type NullScheduler struct{}

// NewNullScheduler returns the no-op adapter.
func NewNullScheduler() *NullScheduler { return &NullScheduler{} }

// Submit always fails: there is no scheduler to submit to.
func (*NullScheduler) Submit(ctx context.Context, script, bundleID string) (models.JobStatus, error) {
	return models.StatusUnknown, fmt.Errorf("%w: no scheduler in this environment", ErrSchedulerUnavailable)
}

// Jobs returns an empty view.
func (*NullScheduler) Jobs(ctx context.Context) ([]models.ClusterJob, error) {
	return nil, nil
}
