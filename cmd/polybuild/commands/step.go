package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/ui/style"
)

var stepShort = map[string]string{
	"test":    "Run the test suites of every plugin that claims project files",
	"lint":    "Run the linters of every plugin that claims project files",
	"package": "Package the outputs of every plugin that claims project files",
}

func (c *CLI) newStepCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: stepShort[name],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := c.app.Step(cmd.Context(), name, cmd.Flags())

			w := cmd.OutOrStdout()
			for i := range results {
				r := &results[i]
				switch r.State() {
				case domain.StateSucceeded:
					_, _ = fmt.Fprintf(w, "%s %s %v\n", style.Check, r.Target, r.Duration.Round(time.Millisecond))
				case domain.StateSkipped:
					_, _ = fmt.Fprintf(w, "%s %s %s\n", style.Warning, r.Target, r.Error)
				default:
					_, _ = fmt.Fprintf(w, "%s %s %s\n", style.Cross, r.Target, r.Error)
				}
			}
			return err
		},
	}
}
