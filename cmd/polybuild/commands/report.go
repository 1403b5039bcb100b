package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/ui/style"
	"go.trai.ch/zerr"
)

func (c *CLI) newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recorded build performance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hours, _ := cmd.Flags().GetInt("hours")
			asJSON, _ := cmd.Flags().GetBool("json")
			if hours < 1 {
				return zerr.With(domain.ErrSettingsInvalid, "hours", hours)
			}

			report, err := c.app.Report(cmd.Context(), time.Duration(hours)*time.Hour, cmd.Flags())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printPerformance(cmd.OutOrStdout(), &report)
			return nil
		},
	}
	cmd.Flags().Int("hours", 24, "Report on builds recorded in the last `N` hours")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	return cmd
}

func printPerformance(w io.Writer, r *domain.PerformanceReport) {
	_, _ = fmt.Fprintf(w, "%s %s to %s\n", style.Bold("Build performance"),
		r.PeriodStart.Format(time.DateTime), r.PeriodEnd.Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "Builds: %d total, %d succeeded, %d failed\n",
		r.TotalBuilds, r.SuccessfulBuilds, r.FailedBuilds)
	if r.TotalBuilds > 0 {
		_, _ = fmt.Fprintf(w, "Build time: avg %.2fs, fastest %.2fs, slowest %.2fs\n",
			r.AverageBuildTime, r.FastestBuildTime, r.SlowestBuildTime)
	}
	_, _ = fmt.Fprintf(w, "Cache: %d entries, %.2fMB, %.1f%% hit rate\n",
		r.Cache.TotalEntries, r.Cache.TotalSizeMB, r.Cache.HitRate)

	targets := make([]string, 0, len(r.TargetPerformance))
	for name := range r.TargetPerformance {
		targets = append(targets, name)
	}
	slices.Sort(targets)
	for _, name := range targets {
		s := r.TargetPerformance[name]
		_, _ = fmt.Fprintf(w, "  %s: avg %.2fs over %d build(s)\n", name, s.Average, s.Count)
	}

	for _, rec := range r.Recommendations {
		_, _ = fmt.Fprintf(w, "%s %s\n", style.Arrow, rec)
	}
}
