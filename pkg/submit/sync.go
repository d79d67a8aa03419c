package submit

import (
	"context"

	"github.com/flowforge/flowforge/pkg/logging"
	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/project"
	"github.com/flowforge/flowforge/pkg/scheduling"
)

// Synchronizer reconciles the store's bundle statuses with the
// scheduler's queue.
type Synchronizer struct {
	project   *project.Project
	scheduler scheduling.Scheduler
	log       *logging.Logger
}

// NewSynchronizer wires a synchronizer. A nil logger disables logging.
func NewSynchronizer(p *project.Project, s scheduling.Scheduler, log *logging.Logger) *Synchronizer {
	if log == nil {
		log = logging.NewLogger(logging.FATAL, false)
	}
	return &Synchronizer{project: p, scheduler: s, log: log}
}

// Sync fetches the scheduler queue once and folds it into every tracked
// bundle. Bundles present in the queue merge forward to the observed
// status; in-flight bundles absent from the queue are marked inactive,
// since the scheduler drops entries once they finish.
func (s *Synchronizer) Sync(ctx context.Context) error {
	queue, err := s.scheduler.Jobs(ctx)
	if err != nil {
		return err
	}
	observed := make(map[string]models.JobStatus, len(queue))
	for _, cj := range queue {
		// The submission name carries the bundle id. Duplicate names
		// collapse to the furthest-along status.
		observed[cj.Name] = models.Merge(observed[cj.Name], cj.Status)
	}

	records, err := s.project.Store.AllBundles()
	if err != nil {
		return err
	}
	for _, rec := range records {
		var next models.JobStatus
		if st, ok := observed[rec.Bundle.ID]; ok {
			next = models.Merge(rec.Status, st)
		} else if rec.Status.InFlight() {
			next = models.StatusInactive
		} else {
			continue
		}
		if next == rec.Status {
			continue
		}
		if err := s.project.Store.UpdateBundleStatus(rec.Bundle.ID, next); err != nil {
			return err
		}
		s.log.Debug("bundle status updated", map[string]interface{}{
			"bundle": rec.Bundle.ID, "from": rec.Status.String(), "to": next.String(),
		})
	}
	return nil
}
