// Package submit implements the submission manager: the idempotent loop
// that gathers eligible operations across the pool, bundles them,
// renders scripts and hands them to the scheduler, plus the
// synchronizer that folds the scheduler's view back into the store.
package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowforge/flowforge/pkg/logging"
	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/ops"
	"github.com/flowforge/flowforge/pkg/project"
	"github.com/flowforge/flowforge/pkg/scheduling"
)

// Options parameterize one submission pass.
type Options struct {
	// Num caps the number of operations submitted this pass; 0 means no
	// cap. The cap counts operations, not bundles.
	Num int

	// BundleSize groups operations into scheduler submissions: 1 submits
	// each operation alone, 0 puts everything into one bundle, any other
	// value fills bundles of that size with a possibly short tail.
	BundleSize int

	// BundleID overrides the derived bundle identity. Only meaningful
	// when the pass produces a single bundle.
	BundleID string

	// Pretend renders scripts and reports what would be submitted
	// without contacting the scheduler or recording anything.
	Pretend bool
}

// Result summarizes one submission pass.
type Result struct {
	Bundles   []*models.Bundle
	Scripts   []string // parallel to Bundles
	Submitted int      // operations actually handed to the scheduler
	Skipped   int      // operations filtered as already in flight
}

// Manager drives submission passes against one project and scheduler.
type Manager struct {
	project   *project.Project
	scheduler scheduling.Scheduler
	log       *logging.Logger
}

// NewManager wires a manager. A nil logger disables logging output.
func NewManager(p *project.Project, s scheduling.Scheduler, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewLogger(logging.FATAL, false)
	}
	return &Manager{project: p, scheduler: s, log: log}
}

// Submit runs one submission pass over the given jobs (the whole pool
// when jobs is nil): gather every eligible operation in pool order,
// drop the ones already in flight, apply the cap, partition into
// bundles, then render and submit each bundle. A failed bundle is
// logged and skipped; the pass continues with the rest.
func (m *Manager) Submit(ctx context.Context, jobs []*models.Job, opts Options) (*Result, error) {
	if jobs == nil {
		var err error
		jobs, err = m.project.Jobs()
		if err != nil {
			return nil, err
		}
	}

	// A predicate error poisons its job only; the healthy remainder of
	// the pool still submits. The joined gather errors surface at the
	// end alongside any bundle errors.
	pending, skipped, gatherErr := m.gather(jobs)
	if opts.Num > 0 && len(pending) > opts.Num {
		pending = pending[:opts.Num]
	}

	res := &Result{Skipped: skipped}
	if len(pending) == 0 {
		m.log.Debug("nothing to submit", map[string]interface{}{"skipped": skipped})
		return res, gatherErr
	}

	bundleErrs := []error{gatherErr}
	for _, chunk := range partition(pending, opts.BundleSize) {
		bundle := m.project.NewBundle(opts.BundleID, chunk)
		script, err := m.project.Renderer.Render("run", bundle)
		if err != nil {
			bundleErrs = append(bundleErrs, fmt.Errorf("bundle %s: %w", bundle.ID, err))
			continue
		}
		res.Bundles = append(res.Bundles, bundle)
		res.Scripts = append(res.Scripts, script)

		if opts.Pretend {
			res.Submitted += len(bundle.Operations)
			continue
		}

		status, err := m.scheduler.Submit(ctx, script, bundle.ID)
		if err != nil {
			m.log.Error("bundle submission failed", map[string]interface{}{
				"bundle": bundle.ID, "error": err.Error(),
			})
			bundleErrs = append(bundleErrs, fmt.Errorf("bundle %s: %w", bundle.ID, err))
			continue
		}
		if err := m.project.Store.SaveBundle(bundle, bundle.OperationIDs(m.project.Name), status); err != nil {
			bundleErrs = append(bundleErrs, fmt.Errorf("bundle %s: record: %w", bundle.ID, err))
			continue
		}
		res.Submitted += len(bundle.Operations)
		m.log.Info("bundle submitted", map[string]interface{}{
			"bundle": bundle.ID, "operations": len(bundle.Operations), "status": status.String(),
		})
	}
	return res, errors.Join(bundleErrs...)
}

// gather collects every eligible operation in pool order, filtering out
// operations whose most recent bundle is still in flight. A predicate
// error poisons its job but the gather continues across the pool; all
// collected errors come back joined.
func (m *Manager) gather(jobs []*models.Job) ([]ops.JobOperation, int, error) {
	var (
		pending []ops.JobOperation
		jobErrs []error
		skipped int
	)
	for _, job := range jobs {
		jobOps, err := m.project.NextOperations(job)
		if err != nil {
			jobErrs = append(jobErrs, err)
			continue
		}
		for _, jo := range jobOps {
			st, err := m.project.OperationStatus(job.ID, jo.Op.Name)
			if err != nil {
				jobErrs = append(jobErrs, err)
				continue
			}
			if st.InFlight() {
				skipped++
				continue
			}
			pending = append(pending, jo)
		}
	}
	return pending, skipped, errors.Join(jobErrs...)
}

// partition splits operations into bundle-sized chunks. size 0 keeps
// everything together, size 1 isolates each operation.
func partition(jobOps []ops.JobOperation, size int) [][]ops.JobOperation {
	if size <= 0 {
		return [][]ops.JobOperation{jobOps}
	}
	var chunks [][]ops.JobOperation
	for size < len(jobOps) {
		chunks = append(chunks, jobOps[:size])
		jobOps = jobOps[size:]
	}
	return append(chunks, jobOps)
}
