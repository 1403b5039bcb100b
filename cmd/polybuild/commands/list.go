package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/ui/style"
)

func (c *CLI) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configured targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			detailed, _ := cmd.Flags().GetBool("detailed")
			targets, err := c.app.List(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i := range targets {
				t := &targets[i]
				if !detailed {
					_, _ = fmt.Fprintln(w, t.Name)
					continue
				}
				_, _ = fmt.Fprintf(w, "%s %s\n", style.Bold(t.Name), t.Description)
				if len(t.Dependencies) > 0 {
					_, _ = fmt.Fprintf(w, "    depends on: %s\n", strings.Join(t.Dependencies, ", "))
				}
				_, _ = fmt.Fprintf(w, "    estimated: %v\n", t.Estimate())
			}
			return nil
		},
	}
	cmd.Flags().BoolP("detailed", "d", false, "Show descriptions, dependencies and estimates")
	return cmd
}
