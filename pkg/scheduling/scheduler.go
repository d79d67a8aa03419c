// Package scheduling defines the adapter interface to external batch
// queue systems and the environment probing that auto-selects one.
package scheduling

import (
	"context"
	"errors"
	"strings"

	"github.com/flowforge/flowforge/pkg/models"
)

// ErrSchedulerUnavailable indicates the external scheduler could not be
// reached or rejected the request. The submission manager isolates this
// failure to the bundle being submitted.
var ErrSchedulerUnavailable = errors.New("scheduler unavailable")

// Scheduler is the capability set an external batch system adapter must
// provide. Jobs must be safe to call frequently and must not block
// indefinitely; adapters enforce their own timeouts through the context.
type Scheduler interface {
	// Submit transmits a prepared script. An empty bundleID makes the
	// adapter derive the submission name from the script's first
	// non-empty line. Naming-level idempotency only: duplicate
	// submissions of the same name may still create duplicate scheduler
	// entries; de-duplication is the submission manager's concern.
	Submit(ctx context.Context, script, bundleID string) (models.JobStatus, error)

	// Jobs returns the scheduler's current view of its queue.
	Jobs(ctx context.Context) ([]models.ClusterJob, error)
}

// NameFromScript extracts the canonical submission name from a script:
// the first non-empty line, comment prefix and whitespace stripped. The
// base template puts the bundle id there by convention.
func NameFromScript(script string) string {
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line != "" {
			return line
		}
	}
	return ""
}
