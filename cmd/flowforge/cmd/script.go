package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/ops"
)

// scriptCmd represents the script command
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Render the submission script without submitting",
	Long:  `Render the script that submit would hand to the scheduler for the selected jobs and print it.`,
	RunE:  runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	addJobFilterFlags(scriptCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	jobs, err := selectJobs(p)
	if err != nil {
		return err
	}

	var (
		pending []ops.JobOperation
		opErrs  []error
	)
	for _, job := range jobs {
		jobOps, err := p.NextOperations(job)
		if err != nil {
			opErrs = append(opErrs, err)
			continue
		}
		pending = append(pending, jobOps...)
	}
	if len(opErrs) > 0 {
		return errors.Join(opErrs...)
	}
	if len(pending) == 0 {
		return fmt.Errorf("no eligible operations for the selected jobs")
	}

	script, err := p.Script(pending)
	if err != nil {
		return err
	}
	fmt.Print(script)
	return nil
}
