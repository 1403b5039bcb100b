package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/app"
	"go.trai.ch/polybuild/internal/engine/validate"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check ports, dependencies and resources without building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportPath, _ := cmd.Flags().GetString("report")
			fixPath, _ := cmd.Flags().GetString("fix-script")

			issues, err := c.app.Validate(cmd.Context(), app.ValidateOptions{
				ReportPath:    reportPath,
				FixScriptPath: fixPath,
				Flags:         cmd.Flags(),
			})
			if issues != nil || err == nil {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), validate.Report(issues))
			}
			return err
		},
	}
	cmd.Flags().StringP("report", "r", "", "Also write the report to `file`")
	cmd.Flags().String("fix-script", "", "Write a shell script resolving port conflicts to `file`")
	return cmd
}
