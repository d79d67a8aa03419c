package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/project"
)

var initName string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project",
	Long:  `Create the project manifest, the job store and the template directory at the project root.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initName, "name", "", "project name (required)")
	initCmd.MarkFlagRequired("name")
}

func runInit(cmd *cobra.Command, args []string) error {
	p, err := project.Init(projectRoot, initName, workflowRegistry())
	if err != nil {
		return err
	}
	defer p.Close()

	logger.Info("project initialized", map[string]interface{}{
		"name": p.Name, "root": projectRoot,
	})
	fmt.Printf("Initialized project %q at %s\n", p.Name, projectRoot)
	return nil
}
