package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/tui/components"
	"github.com/clubsmell/fragdash/internal/tui/theme"
)

const rankingRows = 15

// rankingBars returns the top entries of ranking plus the selected fragrance
// when it falls outside them, separated by a gap row.
func rankingBars(ranking []model.ItemTotal, selected string, limit int) []components.Bar {
	bars := make([]components.Bar, 0, limit+2)
	found := false
	for i, it := range ranking {
		hi := it.Item == selected
		if i >= limit {
			if found {
				break
			}
			if !hi {
				continue
			}
			bars = append(bars, components.Bar{})
		}
		found = found || hi
		bars = append(bars, components.Bar{
			Label:     fmt.Sprintf("#%d %s", it.Rank, it.Item),
			Value:     it.Uses,
			Text:      cli.FormatWears(it.Uses),
			Highlight: hi,
		})
	}
	return bars
}

func (a App) renderRankingTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	var b strings.Builder

	halves := components.LayoutRow(cw, 2)

	var rankBody string
	switch {
	case a.rankErr != nil:
		rankBody = lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.rankErr.Error())
	case len(a.ranking) == 0:
		rankBody = mutedStyle.Render(notTrackedMessage)
	default:
		rankBody = components.HorizontalBars(
			rankingBars(a.ranking, a.sel.Fragrance, rankingRows),
			components.CardInnerWidth(halves[0]))
	}
	rankCard := components.ContentCard("Most worn", rankBody, halves[0])

	houseCard := components.ContentCard("Houses", a.renderHouseTable(components.CardInnerWidth(halves[1])), halves[1])

	b.WriteString(components.CardRow([]string{rankCard, houseCard}))
	return b.String()
}

func (a App) renderHouseTable(w int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hiStyle := lipgloss.NewStyle().Foreground(t.Highlight).Background(t.Surface).Bold(true)

	nameW := max(w-24, 8)
	lines := []string{headStyle.Render(fmt.Sprintf("%-*s %7s %7s %7s", nameW, "House", "Owned", "Worn", "Wears"))}
	for i, h := range a.houses {
		if i >= rankingRows {
			break
		}
		style := rowStyle
		if h.House == a.fragrance.House {
			style = hiStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf("%-*s %7d %7d %7s",
			nameW, truncStr(h.House, nameW), h.Fragrances, h.Tracked, cli.FormatWears(h.Uses))))
	}
	return strings.Join(lines, "\n")
}
