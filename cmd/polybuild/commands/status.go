package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/app"
	"go.trai.ch/polybuild/internal/ui/style"
)

const shortKey = 12

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the cache state of every target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			status, err := c.app.Status(cmd.Context(), cmd.Flags())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}
			printStatus(cmd.OutOrStdout(), &status)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the status as JSON")
	return cmd
}

func printStatus(w io.Writer, s *app.Status) {
	_, _ = fmt.Fprintf(w, "%s %s\n", style.Bold("Project"), s.Root)
	_, _ = fmt.Fprintf(w, "Cache: %s, %d entries, %.2fMB\n",
		s.CacheDir, s.Cache.Entries, float64(s.Cache.TotalBytes)/(1<<20))

	for _, t := range s.Targets {
		mark, state := style.Cross, "not cached"
		if t.Cached {
			mark, state = style.Check, "cached"
		}
		key := t.Key[:min(len(t.Key), shortKey)]
		_, _ = fmt.Fprintf(w, "  %s %s %s %s\n", mark, t.Name, state, key)
	}

	if len(s.RecentBuilds) > 0 {
		_, _ = fmt.Fprintln(w, style.Bold("Recent builds"))
		for i := range s.RecentBuilds {
			r := &s.RecentBuilds[i]
			mark := style.Check
			if !r.Success {
				mark = style.Cross
			}
			_, _ = fmt.Fprintf(w, "  %s %s %s %.2fs\n", mark, r.StartTime.Format(time.DateTime), r.Target, r.DurationSeconds)
		}
	}

	_, _ = fmt.Fprintf(w, "System: %d cores, %.1fGB of %.1fGB memory free, %.1fGB disk free\n",
		s.System.CPUCores, s.System.MemoryAvailableGB, s.System.MemoryTotalGB, s.System.DiskFreeGB)
}
