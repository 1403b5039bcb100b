package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/polybuild/internal/ui/style"
)

func (c *CLI) newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins [name]",
		Short: "List the registered plugins",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			infos, err := c.app.Plugins(cmd.Context(), name)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, info := range infos {
				m := info.Metadata
				mark := style.Check
				if len(info.MissingRequirements) > 0 {
					mark = style.Cross
				}
				_, _ = fmt.Fprintf(w, "%s %s %s: %s\n", mark, style.Bold(m.Name), m.Version, m.Description)
				_, _ = fmt.Fprintf(w, "    extensions: %s\n", strings.Join(m.SupportedExtensions, " "))
				caps := make([]string, 0, len(m.Capabilities))
				for _, capability := range m.Capabilities {
					caps = append(caps, string(capability))
				}
				_, _ = fmt.Fprintf(w, "    capabilities: %s\n", strings.Join(caps, ", "))
				if len(info.MissingRequirements) > 0 {
					_, _ = fmt.Fprintf(w, "    missing: %s\n", strings.Join(info.MissingRequirements, ", "))
				}
			}
			return nil
		},
	}
}
