package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/tui/components"
	"github.com/clubsmell/fragdash/internal/tui/theme"
	"github.com/clubsmell/fragdash/internal/wears"
)

const notTrackedMessage = "Wears not tracked yet."

func (a App) renderWearsTab(cw int) string {
	t := theme.Active
	r := a.report
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	switch r.Status {
	case wears.StatusNotTracked:
		return components.ContentCard(a.fragrance.Name, mutedStyle.Render(notTrackedMessage), cw)
	case wears.StatusFailed:
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		return components.ContentCard(a.fragrance.Name, errStyle.Render(r.Err.Error()), cw)
	}

	s := r.Summary
	var b strings.Builder

	runOut := cli.FormatYear(r.DepletionYear, r.HasDepletionYear())
	runOutHint := fmt.Sprintf("%.1f wears/yr", r.Slope)
	if !r.HasDepletionYear() {
		runOutHint = "no growth recorded"
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total wears", Value: cli.FormatWears(s.TotalUses), Hint: fmt.Sprintf("%d periods", len(s.Periods))},
		{Label: "Rank", Value: cli.FormatRank(s.Rank, s.RankedItems), Hint: "by wears"},
		{Label: "Remaining", Value: cli.FormatVolume(s.RemainingVolume), Hint: "of " + cli.FormatVolume(s.StartingVolume)},
		{Label: "Runs out", Value: runOut, Hint: runOutHint},
	}, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)

	values := make([]float64, len(r.Series))
	labels := make([]string, len(r.Series))
	for i, p := range r.Series {
		values[i] = p.Cumulative
		labels[i] = strconv.Itoa(p.Year)
	}
	chart := components.ColumnChart(values, labels, components.CardInnerWidth(halves[0]), 10)
	chartCard := components.ContentCard("Cumulative wears", chart, halves[0])

	scale := wears.BottleScale(s.ContainerVolume, a.minVolume, a.maxVolume)
	start := components.Bottles(r.StartFill, scale, 6)
	now := components.Bottles(r.Fill, scale, 6)
	bottleBody := lipgloss.JoinHorizontal(lipgloss.Top,
		mutedStyle.Render("Start\n")+"\n"+start,
		lipgloss.NewStyle().Background(t.Surface).Render("   "),
		mutedStyle.Render("Now\n")+"\n"+now,
	)
	barW := max(components.CardInnerWidth(halves[1])-30, 6)
	bottleBody += "\n\n" + components.VolumeBar("Left", s.RemainingVolume, s.StartingVolume, 5, barW)
	bottleCard := components.ContentCard(
		fmt.Sprintf("Bottles · %s × %d", cli.FormatVolume(s.ContainerVolume), s.Backups+1),
		bottleBody, halves[1])

	b.WriteString(components.CardRow([]string{chartCard, bottleCard}))
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Wears per period", a.renderPeriodList(s.Periods), cw))
	return b.String()
}

func (a App) renderPeriodList(periods []model.UsageRecord) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	labelW := 0
	for _, p := range periods {
		labelW = max(labelW, lipgloss.Width(p.Period))
	}
	lines := make([]string, 0, len(periods))
	for _, p := range periods {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-*s", labelW, p.Period))+
			spaceStyle.Render("  ")+
			valueStyle.Render(fmt.Sprintf("%6s", cli.FormatWears(p.Uses))))
	}
	return strings.Join(lines, "\n")
}
