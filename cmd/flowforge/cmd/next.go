package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// nextCmd represents the next command
var nextCmd = &cobra.Command{
	Use:   "next <operation>",
	Short: "List jobs an operation is eligible for",
	Long:  `Print the id of every selected job the named operation would currently run on.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)
	addJobFilterFlags(nextCmd)
}

func runNext(cmd *cobra.Command, args []string) error {
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

	jobs, err := selectJobs(p)
	if err != nil {
		return err
	}

	var checkErrs []error
	for _, job := range jobs {
		eligible, err := op.Eligible(job)
		if err != nil {
			checkErrs = append(checkErrs, err)
			continue
		}
		if eligible {
			fmt.Println(job.ID)
		}
	}
	return errors.Join(checkErrs...)
}
