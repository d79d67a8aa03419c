package cmd

import (
	"github.com/flowforge/flowforge/pkg/ops"
	"github.com/flowforge/flowforge/pkg/workflow"
)

// workflowRegistry resolves the workflow this binary operates. The
// shipped binary carries the reference workflow; embedding projects
// swap in their own.
func workflowRegistry() *ops.Registry {
	return workflow.Registry()
}
