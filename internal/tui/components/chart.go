package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clubsmell/fragdash/internal/tui/theme"
)

var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// axisScale is a y axis with round tick steps fitted to a chart height.
type axisScale struct {
	step        float64
	ceiling     float64
	rowsPerTick int
	rows        int
}

func newAxisScale(peak float64, height int) axisScale {
	if peak <= 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	maxIntervals := max(height/2, 2)
	for int(math.Ceil(peak/step)) > maxIntervals {
		step *= 2
	}
	ceiling := math.Ceil(peak/step) * step
	intervals := max(int(math.Round(ceiling/step)), 1)
	rowsPerTick := max(height/intervals, 2)
	return axisScale{
		step:        step,
		ceiling:     ceiling,
		rowsPerTick: rowsPerTick,
		rows:        rowsPerTick * intervals,
	}
}

// label returns the tick label drawn at row, or "" between ticks.
func (s axisScale) label(row int) string {
	if row%s.rowsPerTick != 0 {
		return ""
	}
	return formatChartLabel(s.step * float64(row/s.rowsPerTick))
}

// ColumnChart renders vertical bars with a labelled y axis, one column per
// value. It is used for the cumulative wear series.
func ColumnChart(values []float64, labels []string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	scale := newAxisScale(peak, height)

	yLabelW := max(len(formatChartLabel(scale.ceiling))+1, 4)
	chartW := max(width-yLabelW-1, 5)

	n := len(values)
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := min(max((chartW-(n-1)*gap)/n, 1), 6)
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := scale.rows; row >= 1; row-- {
		rowTop := scale.ceiling * float64(row) / float64(scale.rows)
		rowBottom := scale.ceiling * float64(row-1) / float64(scale.rows)

		color := t.Accent
		if float64(row)/float64(scale.rows) > 0.66 {
			color = t.AccentBright
		}
		barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, scale.label(row))))
		b.WriteString(axisStyle.Render("│"))
		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := min(max(int((v-rowBottom)/(rowTop-rowBottom)*8), 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(eighths[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		buf := []byte(strings.Repeat(" ", axisLen))
		lastEnd := -1
		for i, lbl := range labels {
			pos := i * (barW + gap)
			if pos <= lastEnd {
				continue
			}
			end := min(pos+len(lbl), axisLen)
			copy(buf[pos:end], lbl[:end-pos])
			lastEnd = end
		}
		labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(labelStyle.Render(strings.TrimRight(string(buf), " ")))
	}

	return b.String()
}

// Bar is one row of a HorizontalBars chart.
type Bar struct {
	Label     string
	Value     float64
	Text      string // value as displayed after the bar
	Highlight bool
}

// HorizontalBars renders labelled bars scaled to the largest value. A bar with
// an empty label renders as a vertical ellipsis, marking skipped rows.
func HorizontalBars(bars []Bar, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW, peak := 0, 0, 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = math.Max(peak, b.Value)
	}
	labelW = min(labelW, max(width/3, 8))
	barMax := max(width-labelW-textW-3, 1)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	hiStyle := lipgloss.NewStyle().Foreground(t.Highlight).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		if b.Label == "" {
			lines = append(lines, textStyle.Render(fmt.Sprintf("%*s", labelW, "⋮")))
			continue
		}
		n := 0
		if peak > 0 {
			n = int(math.Round(b.Value / peak * float64(barMax)))
		}
		ls, bs, ts := labelStyle, barStyle, textStyle
		if b.Highlight {
			ls, bs, ts = hiStyle, hiStyle, hiStyle
		}
		label := truncate(b.Label, labelW)
		lines = append(lines,
			ls.Render(label)+blank.Render(strings.Repeat(" ", max(labelW-lipgloss.Width(label), 0)+1))+
				bs.Render(strings.Repeat("█", n))+blank.Render(" ")+ts.Render(b.Text))
	}
	return strings.Join(lines, "\n")
}

// Bottles draws one bottle glyph per fill fraction, juice filling from the
// bottom. scale (0.1-1) narrows the glyph for small bottles.
func Bottles(fills []float64, scale float64, height int) string {
	if len(fills) == 0 {
		return ""
	}
	t := theme.Active

	inner := max(int(math.Round(10*scale)), 2)
	height = max(height, 2)

	glass := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	juice := lipgloss.NewStyle().Foreground(t.Highlight).Background(t.Glass)
	empty := lipgloss.NewStyle().Background(t.Glass)
	pct := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	glyphs := make([]string, 0, len(fills))
	for _, f := range fills {
		f = math.Min(math.Max(f, 0), 1)
		level := int(math.Round(f * float64(height*8)))

		var b strings.Builder
		neck := max(inner/3, 1)
		side := (inner + 2 - neck - 2) / 2
		b.WriteString(glass.Render(strings.Repeat(" ", side) + "┌" + strings.Repeat("─", neck) + "┐" + strings.Repeat(" ", inner+2-side-neck-2)))
		b.WriteString("\n")
		b.WriteString(glass.Render("╭" + strings.Repeat("─", inner) + "╮"))
		b.WriteString("\n")
		for row := height; row >= 1; row-- {
			var cell string
			switch units := level - (row-1)*8; {
			case units >= 8:
				cell = juice.Render(strings.Repeat("█", inner))
			case units > 0:
				cell = juice.Render(strings.Repeat(string(eighths[units]), inner))
			default:
				cell = empty.Render(strings.Repeat(" ", inner))
			}
			b.WriteString(glass.Render("│") + cell + glass.Render("│"))
			b.WriteString("\n")
		}
		b.WriteString(glass.Render("╰" + strings.Repeat("─", inner) + "╯"))
		b.WriteString("\n")
		b.WriteString(pct.Render(lipgloss.PlaceHorizontal(inner+2, lipgloss.Center, fmt.Sprintf("%.0f%%", f*100))))
		glyphs = append(glyphs, b.String())
	}

	spacer := lipgloss.NewStyle().Background(t.Surface).Render("  ")
	parts := make([]string, 0, 2*len(glyphs))
	for i, g := range glyphs {
		if i > 0 {
			parts = append(parts, spacer)
		}
		parts = append(parts, g)
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, parts...)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1 || v == 0:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
