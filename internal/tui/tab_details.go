package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/tui/components"
	"github.com/clubsmell/fragdash/internal/tui/theme"
)

func (a App) renderDetailsTab(cw int) string {
	t := theme.Active
	f := a.fragrance
	var b strings.Builder

	perfumer := f.Perfumer
	if perfumer == "" {
		perfumer = cli.Placeholder
	}
	retail := cli.FormatPrice(f.Price)
	if f.Volume > 0 {
		retail += " · " + cli.FormatVolume(f.Volume)
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "House", Value: f.House},
		{Label: "Perfumer", Value: perfumer},
		{Label: "Retail", Value: retail},
		{Label: "Price per mL", Value: cli.FormatPricePerML(f.PricePerML)},
	}, cw))
	b.WriteString("\n")

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Score", Value: cli.FormatRating(f.Score), Hint: "out of 100"},
		{Label: "Performance", Value: cli.FormatRating(f.Performance), Hint: "1-10"},
		{Label: "Scent", Value: cli.FormatScent(f.Scent), Hint: "1-10"},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	notes := a.notes.render(f.Notes, innerW)
	if notes == "" {
		notes = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No notes yet.")
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("Notes · %s", f.Name), notes, cw))

	return b.String()
}
