package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/app"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/ui/style"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch targets...",
		Short: "Rebuild targets whenever their inputs change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.ErrOrStderr()
			return c.app.Watch(cmd.Context(), args, app.WatchOptions{
				Flags: cmd.Flags(),
				OnReport: func(r domain.Report, err error) {
					mark := style.Check
					if err != nil {
						mark = style.Cross
					}
					_, _ = fmt.Fprintf(w, "%s %d target(s): %d cached, %d executed, %d failed. Watching for changes...\n",
						mark, r.Summary.TotalBuilds, r.Summary.CacheHits, r.Summary.CacheMisses, r.Summary.Failed)
				},
			})
		},
	}
	addSettingsFlags(cmd.Flags())
	return cmd
}
