package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/submit"
)

var (
	submitNum        int
	submitBundleSize int
	submitBundleID   string
	submitPretend    bool
	submitTest       bool
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit eligible operations to the scheduler",
	Long: `Gather every eligible operation across the selected jobs, bundle them
and hand the rendered scripts to the detected scheduler. Operations
already in flight are skipped, so repeating the command never
duplicates work.`,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	addJobFilterFlags(submitCmd)
	submitCmd.Flags().IntVar(&submitNum, "num", 0, "cap on operations submitted (0 = no cap)")
	submitCmd.Flags().IntVar(&submitBundleSize, "bundle-size", 1, "operations per bundle (0 = all in one)")
	submitCmd.Flags().StringVar(&submitBundleID, "bundle-id", "", "explicit bundle id override")
	submitCmd.Flags().BoolVar(&submitPretend, "pretend", false, "render and print scripts without submitting")
	submitCmd.Flags().BoolVar(&submitTest, "test", false, "use the simulated scheduler environment")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	jobs, err := selectJobs(p)
	if err != nil {
		return err
	}

	env, err := selectEnvironment(p, submitTest)
	if err != nil {
		return err
	}
	sched, err := env.Scheduler()
	if err != nil {
		return err
	}
	logger.Info("submitting", map[string]interface{}{
		"environment": env.Name(), "jobs": len(jobs),
	})

	mgr := submit.NewManager(p, sched, logger)
	res, err := mgr.Submit(cmd.Context(), jobs, submit.Options{
		Num:        submitNum,
		BundleSize: submitBundleSize,
		BundleID:   submitBundleID,
		Pretend:    submitPretend,
	})
	if res != nil {
		if submitPretend {
			for _, script := range res.Scripts {
				fmt.Println(script)
			}
		}
		fmt.Printf("Submitted %d operation(s) in %d bundle(s), %d already in flight\n",
			res.Submitted, len(res.Bundles), res.Skipped)
	}
	return err
}
