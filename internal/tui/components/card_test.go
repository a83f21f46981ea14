package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/clubsmell/fragdash/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	widths := LayoutRow(10, 3)
	if len(widths) != 3 || widths[0] != 4 || widths[1] != 3 || widths[2] != 3 {
		t.Fatalf("LayoutRow(10, 3) = %v, want [4 3 3]", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("amethyst")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{shortCard, tallCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Errorf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}

	// Below the short card the row must still be styled, not bare spaces.
	for i := shortLines; i < len(lines); i++ {
		prefix := lines[i][:min(len(lines[i]), 4)]
		if !strings.HasPrefix(prefix, "\x1b[") {
			t.Errorf("line %d starts unstyled: %q", i, lines[i])
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("amethyst")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	joined := CardRow([]string{tallCard, shortCard})
	for i, line := range strings.Split(joined, "\n") {
		if w := lipgloss.Width(line); w != 50 {
			t.Errorf("line %d width = %d, want 50", i, w)
		}
	}
}

func TestMetricCardRow(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Total wears", Value: "12"},
		{Label: "Rank", Value: "#2 of 45", Hint: "most worn first"},
	}, 60)

	if w := lipgloss.Width(strings.Split(row, "\n")[0]); w != 60 {
		t.Errorf("row width = %d, want 60", w)
	}
	for _, want := range []string{"Total wears", "#2 of 45", "most worn first"} {
		if !strings.Contains(row, want) {
			t.Errorf("row missing %q", want)
		}
	}
}
