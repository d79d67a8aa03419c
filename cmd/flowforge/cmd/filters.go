package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/models"
	"github.com/flowforge/flowforge/pkg/project"
)

var (
	filterParams []string
	filterJobID  string
)

// addJobFilterFlags registers the job selection flags shared by every
// command that operates on a subset of the pool.
func addJobFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&filterParams, "filter", "f", nil, "statepoint filter key=value (repeatable)")
	cmd.Flags().StringVarP(&filterJobID, "job-id", "j", "", "select jobs by id prefix")
}

// selectJobs resolves the filter flags against the pool.
func selectJobs(p *project.Project) ([]*models.Job, error) {
	filters := map[string]string{}
	for _, f := range filterParams {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", f)
		}
		filters[key] = value
	}
	return p.FindJobs(filterJobID, filters)
}
