package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowforge/flowforge/pkg/logging"
	"github.com/flowforge/flowforge/pkg/project"
	"github.com/flowforge/flowforge/pkg/scheduling"
)

var (
	cfgFile     string
	projectRoot string
	logLevel    string
	jsonLogs    bool

	logger *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "flowforge",
	Short: "Workflow orchestration over a pool of parameterized jobs",
	Long: `flowforge orchestrates multi-step computational workflows: it tracks a
pool of parameterized jobs, decides which operations are eligible to run
on each, and submits them to a batch scheduler without duplicates.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.flowforge/config)")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", ".", "project root directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".flowforge"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("flowforge")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if v := viper.GetString("log_level"); v != "" && !rootCmd.PersistentFlags().Changed("log-level") {
			logLevel = v
		}
		if v := viper.GetString("project"); v != "" && !rootCmd.PersistentFlags().Changed("project") {
			projectRoot = v
		}
	}

	logger = logging.NewLogger(logging.ParseLevel(logLevel), jsonLogs)
}

// openProject opens the project at the configured root with the
// built-in workflow registry.
func openProject() (*project.Project, error) {
	p, err := project.Open(projectRoot, workflowRegistry())
	if err != nil {
		return nil, fmt.Errorf("cannot open project: %w", err)
	}
	return p, nil
}

// selectEnvironment resolves the scheduler environment for a project:
// the sim environment when test mode is forced, otherwise the first
// present cluster environment from the project's environments file,
// falling back to the null environment.
func selectEnvironment(p *project.Project, test bool) (scheduling.Environment, error) {
	if test {
		return &scheduling.SimEnvironment{Sim: scheduling.NewSimScheduler()}, nil
	}
	specs, err := scheduling.LoadEnvironmentSpecs(p.EnvironmentsFile())
	if err != nil {
		return nil, err
	}
	envs := make([]scheduling.Environment, 0, len(specs))
	for _, spec := range specs {
		envs = append(envs, scheduling.NewClusterEnvironment(spec))
	}
	return scheduling.DetectEnvironment(envs), nil
}
