package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flowforge/flowforge/pkg/logging"
	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/project"
	"github.com/flowforge/flowforge/pkg/submit"
)

var (
	statusDetailed bool
	statusSync     bool
	statusTest     bool
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workflow status of the pool",
	Long: `Show, for every selected job, its labels, its next operation and the
tracked scheduler status of that operation. With --sync the scheduler
queue is reconciled into the store first.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	addJobFilterFlags(statusCmd)
	statusCmd.Flags().BoolVar(&statusDetailed, "detailed", false, "show every eligible operation per job")
	statusCmd.Flags().BoolVar(&statusSync, "sync", false, "reconcile scheduler queue into the store first")
	statusCmd.Flags().BoolVar(&statusTest, "test", false, "use the simulated scheduler environment")
}

// jobRow is one classified job, assembled concurrently.
type jobRow struct {
	job    *models.Job
	labels []string
	ops    []opRow
	err    error
}

type opRow struct {
	name   string
	status models.JobStatus
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	if statusSync {
		env, err := selectEnvironment(p, statusTest)
		if err != nil {
			return err
		}
		sched, err := env.Scheduler()
		if err != nil {
			return err
		}
		if err := submit.NewSynchronizer(p, sched, logger).Sync(cmd.Context()); err != nil {
			return fmt.Errorf("status sync: %w", err)
		}
	}

	jobs, err := selectJobs(p)
	if err != nil {
		return err
	}

	rows := make([]jobRow, len(jobs))
	var g errgroup.Group
	g.SetLimit(8)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			rows[i] = classifyJob(p, job)
			return nil
		})
	}
	// Row errors are carried in jobRow; the group never returns one.
	_ = g.Wait()

	if logging.ParseLevel(logLevel) == logging.DEBUG {
		for _, job := range jobs {
			logger.Debug("statepoint dump", map[string]interface{}{
				"job": job.ID, "statepoint": spew.Sdump(job.Statepoint),
			})
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job ID", "Operation", "Status", "Labels")
	var rowErrs []string
	for _, row := range rows {
		if row.err != nil {
			rowErrs = append(rowErrs, row.err.Error())
			continue
		}
		opCol, stCol := "-", "-"
		if len(row.ops) > 0 {
			names := make([]string, 0, len(row.ops))
			sts := make([]string, 0, len(row.ops))
			shown := row.ops
			if !statusDetailed {
				shown = shown[:1]
			}
			for _, o := range shown {
				names = append(names, o.name)
				sts = append(sts, o.status.String())
			}
			opCol = strings.Join(names, ", ")
			stCol = strings.Join(sts, ", ")
		}
		table.Append(shortID(row.job.ID), opCol, stCol, strings.Join(row.labels, ", "))
	}
	table.Render()

	if len(rowErrs) > 0 {
		return fmt.Errorf("status errors:\n  %s", strings.Join(rowErrs, "\n  "))
	}
	return nil
}

func classifyJob(p *project.Project, job *models.Job) jobRow {
	row := jobRow{job: job}
	labels, err := p.Classify(job)
	if err != nil {
		row.err = err
		return row
	}
	row.labels = labels

	jobOps, err := p.NextOperations(job)
	if err != nil {
		row.err = err
		return row
	}
	for _, jo := range jobOps {
		st, err := p.OperationStatus(job.ID, jo.Op.Name)
		if err != nil {
			row.err = err
			return row
		}
		row.ops = append(row.ops, opRow{name: jo.Op.Name, status: st})
	}
	return row
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
