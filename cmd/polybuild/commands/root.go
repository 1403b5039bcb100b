// Package commands implements the CLI commands for polybuild.
package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/polybuild/internal/app"
	"go.trai.ch/polybuild/internal/build"
	"go.trai.ch/polybuild/internal/core/domain"
)

// CLI represents the command line interface for polybuild.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, targets []string, opts app.RunOptions) (domain.Report, error)
	Plan(ctx context.Context, targets []string, opts app.PlanOptions) (*domain.Plan, error)
	Validate(ctx context.Context, opts app.ValidateOptions) ([]domain.Issue, error)
	Plugins(ctx context.Context, name string) ([]domain.PluginInfo, error)
	Clean(ctx context.Context, opts app.CleanOptions) error
	Report(ctx context.Context, window time.Duration, flags *pflag.FlagSet) (domain.PerformanceReport, error)
	Watch(ctx context.Context, targets []string, opts app.WatchOptions) error
	Step(ctx context.Context, name string, flags *pflag.FlagSet) ([]domain.BuildResult, error)
	List(ctx context.Context, flags *pflag.FlagSet) ([]domain.BuildTarget, error)
	Status(ctx context.Context, flags *pflag.FlagSet) (app.Status, error)
	Explain(ctx context.Context, name string, flags *pflag.FlagSet) (app.Explanation, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "polybuild",
		Short:         "A build orchestrator for polyglot repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(
		c.newRunCmd(),
		c.newPlanCmd(),
		c.newValidateCmd(),
		c.newPluginsCmd(),
		c.newCleanCmd(),
		c.newReportCmd(),
		c.newWatchCmd(),
		c.newListCmd(),
		c.newStatusCmd(),
		c.newExplainCmd(),
		c.newVersionCmd(),
	)
	for _, name := range app.Steps {
		rootCmd.AddCommand(c.newStepCmd(name))
	}

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// addSettingsFlags registers the flags that override build_system settings.
func addSettingsFlags(fs *pflag.FlagSet) {
	fs.BoolP("no-cache", "n", false, "Bypass the build cache and force execution")
	fs.IntP("jobs", "j", domain.DefaultParallelism, "Maximum number of targets built at once")
	fs.Duration("timeout", domain.DefaultTimeout, "Per-target build timeout")
	fs.Bool("skip-validation", false, "Skip the pre-build validators")
}
