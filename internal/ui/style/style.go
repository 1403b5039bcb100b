// Package style holds the brand palette and status icons shared by the
// logger and the renderers.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Status icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
)

var heading = lipgloss.NewStyle().Bold(true).Foreground(Iris)

// Bold renders s as a heading.
func Bold(s string) string {
	return heading.Render(s)
}
