package commands

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/app"
	"go.trai.ch/polybuild/internal/core/domain"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...|all]",
		Short: "Build targets and their dependencies",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detect, _ := cmd.Flags().GetBool("detect")
			if len(args) == 0 && !detect {
				_ = cmd.Help()
				return nil
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			report, err := c.app.Run(cmd.Context(), args, app.RunOptions{
				Flags:  cmd.Flags(),
				Quiet:  asJSON,
				Detect: detect,
			})
			if !asJSON {
				return err
			}
			// A failed build still prints its report.
			if err != nil && !errors.Is(err, domain.ErrBuildFailed) {
				return err
			}
			if encErr := writeReportJSON(cmd.OutOrStdout(), &report); encErr != nil {
				return encErr
			}
			return err
		},
	}
	addSettingsFlags(cmd.Flags())
	cmd.Flags().Bool("json", false, "Print the build report as JSON instead of rendering progress")
	cmd.Flags().Bool("detect", false, "Build one target per plugin from the files it detects")
	return cmd
}

type reportJSON struct {
	Success  bool                 `json:"success"`
	Groups   [][]string           `json:"groups"`
	Results  []domain.BuildResult `json:"results"`
	Warnings []domain.Issue       `json:"warnings,omitempty"`
	Summary  summaryJSON          `json:"summary"`
}

type summaryJSON struct {
	TotalBuilds        int     `json:"total_builds"`
	CacheHits          int     `json:"cache_hits"`
	CacheMisses        int     `json:"cache_misses"`
	Failed             int     `json:"failed"`
	Skipped            int     `json:"skipped"`
	EstimatedSeconds   float64 `json:"estimated_duration"`
	ActualSeconds      float64 `json:"actual_duration"`
	ParallelEfficiency float64 `json:"parallel_efficiency"`
}

func writeReportJSON(w io.Writer, r *domain.Report) error {
	s := r.Summary
	out := reportJSON{
		Success:  r.Success(),
		Groups:   r.Groups,
		Results:  r.Results,
		Warnings: r.Warnings,
		Summary: summaryJSON{
			TotalBuilds:        s.TotalBuilds,
			CacheHits:          s.CacheHits,
			CacheMisses:        s.CacheMisses,
			Failed:             s.Failed,
			Skipped:            s.Skipped,
			EstimatedSeconds:   s.EstimatedDuration.Seconds(),
			ActualSeconds:      s.ActualDuration.Round(time.Millisecond).Seconds(),
			ParallelEfficiency: s.ParallelEfficiency,
		},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
