package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/tui/theme"
)

// focusArea is the sidebar list that receives j/k.
type focusArea int

const (
	focusMode focusArea = iota
	focusValue
	focusFragrance
)

// activeCatalog is the catalog the cascade works on: the search matches, or
// the full catalog when the query matches nothing.
func (a App) activeCatalog() []model.Fragrance {
	if a.ds == nil {
		return nil
	}
	if found := pipeline.FilterByQuery(a.ds.Catalog, a.query); len(found) > 0 {
		return found
	}
	return a.ds.Catalog
}

// focusItems returns the entries of the focused list and the index of the
// current selection in it (-1 when absent).
func (a App) focusItems() ([]string, int) {
	var items []string
	var current string
	switch a.focus {
	case focusMode:
		for _, m := range pipeline.Modes {
			items = append(items, m.String())
		}
		current = a.sel.Mode.String()
	case focusValue:
		items = pipeline.Values(a.activeCatalog(), a.sel.Mode)
		current = a.sel.Value
	case focusFragrance:
		items = pipeline.FragranceOptions(a.activeCatalog(), a.sel)
		current = a.sel.Fragrance
	}
	return items, slices.Index(items, current)
}

func (a *App) cycleFocus(delta int) {
	const n = 3
	next := a.focus
	for range n {
		next = focusArea((int(next) + delta + n) % n)
		if next == focusValue && a.sel.Mode == pipeline.ModeAll {
			continue
		}
		break
	}
	a.focus = next
}

func (a *App) moveCursor(delta int) {
	items, idx := a.focusItems()
	if len(items) == 0 {
		return
	}
	a.choose(min(max(idx+delta, 0), len(items)-1))
}

func (a *App) jumpCursor(last bool) {
	items, _ := a.focusItems()
	if len(items) == 0 {
		return
	}
	if last {
		a.choose(len(items) - 1)
	} else {
		a.choose(0)
	}
}

// choose selects entry idx of the focused list. Changing an upper level of the
// cascade clears the levels below it.
func (a *App) choose(idx int) {
	items, _ := a.focusItems()
	switch a.focus {
	case focusMode:
		mode := pipeline.Modes[idx]
		if mode != a.sel.Mode {
			a.sel = pipeline.Selection{Mode: mode}
		}
	case focusValue:
		if items[idx] != a.sel.Value {
			a.sel.Value = items[idx]
			a.sel.Fragrance = ""
		}
	case focusFragrance:
		a.sel.Fragrance = items[idx]
	}
	a.recompute()
}

// ─── Search ─────────────────────────────────────────────────────

func newSearchInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "name, house or perfumer"
	ti.CharLimit = 64
	ti.Width = sidebarWidth - 8
	ti.SetValue(value)
	return ti
}

// updateSearch handles keys while the search box is open. The cascade follows
// the query as it is typed.
func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searching = false
		a.focus = focusFragrance
		return a, nil
	case "esc":
		a.searching = false
		a.query = ""
		a.recompute()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if q := strings.TrimSpace(a.searchInput.Value()); q != a.query {
		a.query = q
		a.recompute()
	}
	return a, cmd
}

// ─── Rendering ──────────────────────────────────────────────────

func (a App) renderSidebar(height int) string {
	t := theme.Active
	inner := sidebarWidth - 4

	titleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	focusTitleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(title string, area focusArea) string {
		if a.focus == area && !a.searching {
			return focusTitleStyle.Render("▌" + title)
		}
		return titleStyle.Render(" " + title)
	}

	var lines []string
	if a.searching {
		lines = append(lines, a.searchInput.View(), "")
	} else if a.query != "" && len(pipeline.FilterByQuery(a.ds.Catalog, a.query)) == 0 {
		lines = append(lines, dimStyle.Render("no match for "+truncStr(a.query, inner-13)), "")
	}

	modeNames := make([]string, len(pipeline.Modes))
	for i, m := range pipeline.Modes {
		modeNames[i] = m.String()
	}
	lines = append(lines, section("Filter by", focusMode))
	lines = append(lines, a.renderList(modeNames, a.sel.Mode.String(), len(modeNames), a.focus == focusMode, inner)...)

	catalog := a.activeCatalog()
	fragrances := pipeline.FragranceOptions(catalog, a.sel)
	avail := max(height-2-len(lines), 4)

	if a.sel.Mode != pipeline.ModeAll {
		values := pipeline.Values(catalog, a.sel.Mode)
		// Two titles and two blank separators.
		rows := avail - 4
		valueRows := min(len(values), max(rows/3, 1))
		lines = append(lines, "", section(a.sel.Mode.String(), focusValue))
		lines = append(lines, a.renderList(values, a.sel.Value, valueRows, a.focus == focusValue, inner)...)
		avail = rows - valueRows + 2
	}

	lines = append(lines, "", section("Fragrance", focusFragrance))
	lines = append(lines, a.renderList(fragrances, a.sel.Fragrance, max(avail-2, 1), a.focus == focusFragrance, inner)...)

	border := t.Border
	if !a.searching {
		border = t.BorderAccent
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(sidebarWidth-2).
		Height(max(height-2, 1)).
		Padding(0, 1)

	return truncateHeight(box.Render(strings.Join(lines, "\n")), height)
}

// renderList draws a scrolling window of at most rows items kept around the
// selected entry.
func (a App) renderList(items []string, selected string, rows int, focused bool, width int) []string {
	t := theme.Active

	itemStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	if focused {
		selStyle = selStyle.Foreground(t.Highlight)
	}
	noneStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(items) == 0 {
		return []string{noneStyle.Render("  (none)")}
	}

	cur := max(slices.Index(items, selected), 0)
	rows = max(min(rows, len(items)), 1)
	offset := min(max(cur-rows/2, 0), len(items)-rows)

	out := make([]string, 0, rows)
	for i := offset; i < offset+rows; i++ {
		label := truncStr(items[i], width-2)
		if i == cur && items[i] == selected {
			out = append(out, selStyle.Render("▸ "+label))
		} else {
			out = append(out, itemStyle.Render("  "+label))
		}
	}
	return out
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
