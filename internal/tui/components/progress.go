package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/clubsmell/fragdash/internal/tui/theme"
)

// LoadingBar renders the workbook loading progress with a percentage.
func LoadingBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := min(max(int(pct*float64(width)), 0), width)

	barColor := t.Accent
	if pct >= 0.8 {
		barColor = t.AccentBright
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ColorForFill maps how much juice is left to green, orange or red.
func ColorForFill(fill float64) lipgloss.Color {
	t := theme.Active
	switch {
	case fill <= 0.15:
		return t.Red
	case fill <= 0.4:
		return t.Orange
	default:
		return t.Green
	}
}

// VolumeBar renders a labelled bar of remaining against starting volume,
// followed by the remaining mL.
func VolumeBar(label string, remaining, starting float64, labelW, barWidth int) string {
	t := theme.Active

	fill := 0.0
	if starting > 0 {
		fill = clamp01(remaining / starting)
	}
	color := ColorForFill(fill)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(fill) +
		spaceStyle.Render(" ") +
		valueStyle.Render(fmt.Sprintf("%3.0f%% · %.1f mL", fill*100, remaining))
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
