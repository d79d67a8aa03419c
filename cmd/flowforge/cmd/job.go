package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/models"
)

// jobCmd represents the job command
var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage the job pool",
	Long:  `Commands for registering and listing the parameterized jobs the workflow runs over.`,
}

// jobAddCmd represents the job add command
var jobAddCmd = &cobra.Command{
	Use:   "add key=value [key=value...]",
	Short: "Register a job for a statepoint",
	Long: `Register a job for the given statepoint parameters. Integer values are
stored as numbers. Adding the same statepoint twice is a no-op; the job
id is derived from the statepoint alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runJobAdd,
}

// jobListCmd represents the job list command
var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs in the pool",
	RunE:  runJobList,
}

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobAddCmd)
	jobCmd.AddCommand(jobListCmd)
}

func runJobAdd(cmd *cobra.Command, args []string) error {
	sp := map[string]interface{}{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid statepoint parameter %q, want key=value", arg)
		}
		if n, err := strconv.Atoi(value); err == nil {
			sp[key] = n
		} else {
			sp[key] = value
		}
	}

	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	job, err := p.OpenJob(sp)
	if err != nil {
		return err
	}
	fmt.Println(job.ID)
	return nil
}

func runJobList(cmd *cobra.Command, args []string) error {
	p, err := openProject()
	if err != nil {
		return err
	}
	defer p.Close()

	jobs, err := p.Jobs()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Job ID", "Statepoint")
	for _, job := range jobs {
		sp, err := statepointJSON(job)
		if err != nil {
			return err
		}
		table.Append(job.ID, sp)
	}
	table.Render()
	fmt.Printf("\n%d job(s)\n", len(jobs))
	return nil
}

// statepointJSON renders a job's statepoint for table output. Map keys
// marshal in sorted order, so the rendering is stable.
func statepointJSON(job *models.Job) (string, error) {
	sp, err := json.Marshal(job.Statepoint)
	if err != nil {
		return "", fmt.Errorf("encoding statepoint of job %s: %w", job.ID, err)
	}
	return string(sp), nil
}
