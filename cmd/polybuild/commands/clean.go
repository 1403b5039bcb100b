package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the build cache and, optionally, metrics and plugin outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metrics, _ := cmd.Flags().GetBool("metrics")
			plugins, _ := cmd.Flags().GetBool("plugins")
			all, _ := cmd.Flags().GetBool("all")

			return c.app.Clean(cmd.Context(), app.CleanOptions{
				Metrics: metrics || all,
				Plugins: plugins || all,
				Flags:   cmd.Flags(),
			})
		},
	}

	cmd.Flags().BoolP("metrics", "m", false, "Also delete recorded build metrics")
	cmd.Flags().BoolP("plugins", "p", false, "Also run every plugin's clean step")
	cmd.Flags().BoolP("all", "a", false, "Clean the cache, metrics and plugin outputs")

	return cmd
}
