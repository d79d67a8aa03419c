package scheduling

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/flowforge/flowforge/pkg/models"
)

// SimScheduler is an in-memory scheduler used by tests and the --test
// submission mode. It is an explicit, constructor-injected instance;
// components that need a shared view hold a reference to the same
// instance, never package-level state.
type SimScheduler struct {
	mu   sync.Mutex
	jobs map[string]*models.ClusterJob // keyed by scheduler id
}

// NewSimScheduler creates an empty in-memory scheduler.
func NewSimScheduler() *SimScheduler {
	return &SimScheduler{jobs: map[string]*models.ClusterJob{}}
}

// Submit accepts any script and records a submitted cluster job under a
// fresh scheduler id. Duplicate names are accepted, mirroring real queue
// behavior.
func (s *SimScheduler) Submit(ctx context.Context, script, bundleID string) (models.JobStatus, error) {
	if err := ctx.Err(); err != nil {
		return models.StatusUnknown, err
	}
	name := bundleID
	if name == "" {
		name = NameFromScript(script)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sid := uuid.NewString()
	s.jobs[sid] = &models.ClusterJob{SchedulerID: sid, Name: name, Status: models.StatusSubmitted}
	return models.StatusSubmitted, nil
}

// Jobs returns a snapshot of the queue.
func (s *SimScheduler) Jobs(ctx context.Context) ([]models.ClusterJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ClusterJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	return out, nil
}

// Step pushes every queued job one status forward
// (submitted→held→queued→active→inactive) and drops jobs that were
// already inactive, simulating queue progression between invocations.
func (s *SimScheduler) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var remove []string
	for sid, job := range s.jobs {
		if job.Status == models.StatusInactive {
			remove = append(remove, sid)
			continue
		}
		job.Status++
		if job.Status > models.StatusActive {
			job.Status = models.StatusInactive
		}
	}
	for _, sid := range remove {
		delete(s.jobs, sid)
	}
}

// Reset clears the queue.
func (s *SimScheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = map[string]*models.ClusterJob{}
}

// Len returns the number of jobs currently in the queue.
func (s *SimScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
