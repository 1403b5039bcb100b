package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/app"
	"go.trai.ch/polybuild/internal/ui/style"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [targets...]",
		Short: "Show the execution groups without building",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detect, _ := cmd.Flags().GetBool("detect")
			plan, err := c.app.Plan(cmd.Context(), args, app.PlanOptions{
				Detect: detect,
				Flags:  cmd.Flags(),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%s %d target(s) in %d group(s)\n",
				style.Bold("Plan:"), len(plan.Targets), len(plan.Groups))
			for i, g := range plan.Groups {
				_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, strings.Join(g, ", "))
			}
			_, _ = fmt.Fprintf(w, "Estimated duration: %v\n", plan.EstimatedDuration)
			for _, warn := range plan.Warnings {
				_, _ = fmt.Fprintf(w, "%s %s\n", style.Warning, warn)
			}
			return nil
		},
	}
	cmd.Flags().Bool("detect", false, "Plan from files claimed by plugins instead of configured targets")
	return cmd
}
