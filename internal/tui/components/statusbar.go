package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clubsmell/fragdash/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// info (workbook, load time) on the right.
func RenderStatusBar(width int, hints, info string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " " + hints
	right := ""
	if info != "" {
		right = info + " "
	}

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
