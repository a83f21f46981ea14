package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Palette used by plain CLI output.
var (
	ColorBorder    = lipgloss.Color("#2E2440")
	ColorTextDim   = lipgloss.Color("#5C5470")
	ColorTextMuted = lipgloss.Color("#8A82A0")
	ColorText      = lipgloss.Color("#F4F0FA")
	ColorAccent    = lipgloss.Color("#8A5CF5")
	ColorGold      = lipgloss.Color("#FFD700")
	ColorGreen     = lipgloss.Color("#7FB069")
	ColorOrange    = lipgloss.Color("#E08E45")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goldStyle = lipgloss.NewStyle().
			Foreground(ColorGold)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table is a titled, rounded-border table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderKV renders aligned "label  value" lines.
func RenderKV(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p[0]); w > width {
			width = w
		}
	}
	var b strings.Builder
	for _, p := range pairs {
		pad := strings.Repeat(" ", width-lipgloss.Width(p[0]))
		fmt.Fprintf(&b, "  %s%s  %s\n", mutedStyle.Render(p[0]), pad, valueStyle.Render(p[1]))
	}
	return b.String()
}

// RenderWarning renders a highlighted one-line warning.
func RenderWarning(msg string) string {
	return warnStyle.Render("  ! " + msg)
}

// RenderTable renders t with lipgloss/table. Every column but the first is
// right-aligned; a row holding only "---" becomes a rule between its neighbours.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return ""
	}

	var rows [][]string
	var breaks []int // data rows followed by a rule
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			if len(rows) > 0 && (len(breaks) == 0 || breaks[len(breaks)-1] != len(rows)-1) {
				breaks = append(breaks, len(rows)-1)
			}
			continue
		}
		cells := make([]string, cols)
		copy(cells, row)
		rows = append(rows, cells)
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return cell.Inherit(headerStyle)
			case col > 0:
				return cell.Inherit(valueStyle).Align(lipgloss.Right)
			default:
				return cell.Inherit(valueStyle)
			}
		})
	first := 1
	if len(t.Headers) > 0 {
		tbl = tbl.Headers(t.Headers...)
		first = 3
	}

	lines := strings.Split(tbl.Render(), "\n")
	rule := strings.NewReplacer("╭", "├", "┬", "┼", "╮", "┤").Replace(lines[0])

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	next := 0
	for i, line := range lines {
		b.WriteString(line + "\n")
		if next < len(breaks) && i == first+breaks[next] && i < len(lines)-2 {
			b.WriteString(rule + "\n")
			next++
		}
	}
	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %d/%d sheets", mutedStyle.Render(bar), current, total)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		idx = min(max(idx, 0), len(blocks)-1)
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders one labelled bar of a bar chart. The highlighted
// bar is drawn in gold.
func RenderHorizontalBar(label string, labelWidth int, value, maxValue float64, maxWidth int, highlight bool) string {
	barLen := 0
	if maxValue > 0 {
		barLen = max(0, int(value/maxValue*float64(maxWidth)))
	}
	style := headerStyle
	if highlight {
		style = goldStyle
	}
	gap := strings.Repeat(" ", max(0, labelWidth-lipgloss.Width(label)))
	return fmt.Sprintf("  %s%s %s %s", label, gap, style.Render(strings.Repeat("█", barLen)), mutedStyle.Render(FormatWears(value)))
}

// RenderBottles draws one fill gauge per bottle, e.g. "[████░░░░] 50%".
func RenderBottles(fills []float64, width int) string {
	parts := make([]string, 0, len(fills))
	for _, f := range fills {
		n := int(f*float64(width) + 0.5)
		n = min(max(n, 0), width)
		bar := goldStyle.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("░", width-n))
		parts = append(parts, fmt.Sprintf("[%s] %s", bar, FormatPercent(f)))
	}
	return strings.Join(parts, "  ")
}
