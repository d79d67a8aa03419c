package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/ops"
	"github.com/flowforge/flowforge/pkg/project"
	"github.com/flowforge/flowforge/pkg/workflow"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [operation]",
	Short: "Execute eligible operations in-process",
	Long: `Sweep the selected jobs and execute every eligible operation directly,
without a scheduler. An operation name argument restricts the sweep to
that operation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addJobFilterFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	jobs, err := selectJobs(p)
	if err != nil {
		return err
	}

	var only string
	if len(args) == 1 {
		only = args[0]
		if _, ok := p.Registry.Operation(only); !ok {
			return fmt.Errorf("unknown operation %q", only)
		}
	}

	var runErrs []error
	executed := 0
	for _, job := range jobs {
		jobOps, err := p.NextOperations(job)
		if err != nil {
			runErrs = append(runErrs, err)
			continue
		}
		for _, jo := range jobOps {
			if only != "" && jo.Op.Name != only {
				continue
			}
			if err := executeOperation(cmd.Context(), p, job, jo); err != nil {
				runErrs = append(runErrs, fmt.Errorf("operation %s on job %s: %w", jo.Op.Name, job.ID, err))
				continue
			}
			executed++
		}
	}

	logger.Info("run pass finished", map[string]interface{}{
		"executed": executed, "errors": len(runErrs),
	})
	return errors.Join(runErrs...)
}

// executeOperation runs one operation payload: in-process when the
// workflow provides a function for it, otherwise the rendered command
// through the shell in the project root.
func executeOperation(ctx context.Context, p *project.Project, job *models.Job, jo ops.JobOperation) error {
	if fn, ok := workflow.ExecFuncs[jo.Op.Name]; ok {
		return fn(p, job)
	}
	c := exec.CommandContext(ctx, "sh", "-c", jo.Cmd)
	c.Dir = p.Root
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
