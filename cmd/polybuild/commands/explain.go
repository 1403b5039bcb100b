package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/ui/style"
)

func (c *CLI) newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <target>",
		Short: "Describe a target and what building it runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			withDeps, _ := cmd.Flags().GetBool("dependencies")
			ex, err := c.app.Explain(cmd.Context(), args[0], cmd.Flags())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			t := &ex.Target
			_, _ = fmt.Fprintf(w, "%s %s\n", style.Bold(t.Name), t.Description)
			_, _ = fmt.Fprintf(w, "Estimated duration: %v\n", t.Estimate())
			_, _ = fmt.Fprintf(w, "Parallel safe: %t\n", t.Parallel)
			if t.Plugin != "" {
				_, _ = fmt.Fprintf(w, "Plugin: %s\n", t.Plugin)
			}
			if len(ex.Dependencies) > 0 {
				_, _ = fmt.Fprintf(w, "Dependencies: %s\n", strings.Join(ex.Dependencies, ", "))
			}
			if len(ex.Dependents) > 0 {
				_, _ = fmt.Fprintf(w, "Dependents: %s\n", strings.Join(ex.Dependents, ", "))
			}
			for _, line := range t.Commands {
				_, _ = fmt.Fprintf(w, "  %s %s\n", style.Arrow, line)
			}
			if ex.Cached {
				_, _ = fmt.Fprintf(w, "%s cached as %s\n", style.Check, ex.Key)
			}

			if withDeps {
				_, _ = fmt.Fprintln(w, style.Bold("Execution order"))
				for i, g := range ex.Order {
					_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, strings.Join(g, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolP("dependencies", "d", false, "Also show the execution order of the target and its dependencies")
	return cmd
}
