package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestChartTickStep(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 1},
		{7, 1},
		{12, 2},
		{50, 10},
		{100, 20},
		{900, 200},
	}
	for _, tt := range tests {
		if got := chartTickStep(tt.in); got != tt.want {
			t.Errorf("chartTickStep(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := map[float64]string{
		0:    "0",
		0.5:  "0.5",
		12:   "12",
		2000: "2k",
		1500: "1.5k",
	}
	for in, want := range tests {
		if got := formatChartLabel(in); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestColumnChart(t *testing.T) {
	out := ColumnChart([]float64{2, 8, 12}, []string{"2021", "2022", "2023"}, 40, 8)
	// Peak 12 fits three ticks of 4, two rows each, plus axis and label lines.
	if lines := strings.Count(out, "\n") + 1; lines != 8 {
		t.Fatalf("lines = %d, want 8\n%s", lines, out)
	}
	for _, year := range []string{"2021", "2022", "2023"} {
		if !strings.Contains(out, year) {
			t.Errorf("missing x label %s", year)
		}
	}
	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line %d width = %d, want <= 40", i, w)
		}
	}
}

func TestColumnChartEmpty(t *testing.T) {
	if out := ColumnChart(nil, nil, 40, 8); out != "" {
		t.Errorf("ColumnChart(nil) = %q, want empty", out)
	}
}

func TestColumnChartSinglePoint(t *testing.T) {
	out := ColumnChart([]float64{3}, []string{"2024"}, 30, 6)
	if !strings.Contains(out, "█") {
		t.Errorf("single value drew no bar:\n%s", out)
	}
}

func TestHorizontalBars(t *testing.T) {
	bars := []Bar{
		{Label: "Aventus", Value: 12, Text: "12"},
		{Label: "Dune", Value: 20, Text: "20"},
		{},
		{Label: "A Very Long Fragrance Name Indeed", Value: 1, Text: "1", Highlight: true},
	}
	out := HorizontalBars(bars, 50)
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4", len(lines))
	}
	if !strings.Contains(lines[2], "⋮") {
		t.Errorf("gap row = %q, want ellipsis", lines[2])
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w > 50 {
			t.Errorf("line %d width = %d, want <= 50", i, w)
		}
	}
	if !strings.Contains(lines[3], "…") {
		t.Errorf("long label not truncated: %q", lines[3])
	}
}

func TestBottles(t *testing.T) {
	out := Bottles([]float64{1, 0.5, 0}, 1, 4)
	// Neck, shoulder, four body rows, base and percentage.
	if lines := strings.Count(out, "\n") + 1; lines != 8 {
		t.Fatalf("lines = %d, want 8\n%s", lines, out)
	}
	for _, pct := range []string{"100%", "50%", "0%"} {
		if !strings.Contains(out, pct) {
			t.Errorf("missing %s", pct)
		}
	}
}

func TestBottlesScaleNarrowsGlyph(t *testing.T) {
	wide := lipgloss.Width(Bottles([]float64{1}, 1, 3))
	narrow := lipgloss.Width(Bottles([]float64{1}, 0.1, 3))
	if narrow >= wide {
		t.Errorf("scaled width %d, want < %d", narrow, wide)
	}
}

func TestVolumeBar(t *testing.T) {
	out := VolumeBar("Remaining", 50, 100, 10, 20)
	if !strings.Contains(out, "50%") || !strings.Contains(out, "50.0 mL") {
		t.Errorf("VolumeBar = %q", out)
	}
}
