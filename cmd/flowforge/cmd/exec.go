package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/ops"
)

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:   "exec <operation> [job-id...]",
	Short: "Run one operation unconditionally",
	Long: `Run the named operation on the given jobs (or every job in the pool),
skipping the eligibility check. This is the entry point submission
scripts call back into.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	opName := args[0]
	op, ok := p.Registry.Operation(opName)
	if !ok {
		return fmt.Errorf("unknown operation %q", opName)
	}

	var jobs []*models.Job
	if len(args) > 1 {
		for _, id := range args[1:] {
			matched, err := p.FindJobs(id, nil)
			if err != nil {
				return err
			}
			if len(matched) == 0 {
				return fmt.Errorf("no job matches id %q", id)
			}
			jobs = append(jobs, matched...)
		}
	} else {
		jobs, err = p.Jobs()
		if err != nil {
			return err
		}
	}

	var execErrs []error
	for _, job := range jobs {
		cmdStr, err := op.Command(job)
		if err != nil {
			execErrs = append(execErrs, err)
			continue
		}
		jo := ops.JobOperation{Job: job, Op: op, Cmd: cmdStr}
		if err := executeOperation(cmd.Context(), p, job, jo); err != nil {
			execErrs = append(execErrs, fmt.Errorf("operation %s on job %s: %w", opName, job.ID, err))
		}
	}
	return errors.Join(execErrs...)
}
