package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatNumber(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4500: "-4,500"}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatWears(t *testing.T) {
	if got := FormatWears(12); got != "12" {
		t.Errorf("FormatWears(12) = %q", got)
	}
	if got := FormatWears(3.5); got != "3.5" {
		t.Errorf("FormatWears(3.5) = %q", got)
	}
}

func TestFormatVolume(t *testing.T) {
	if got := FormatVolume(95.6); got != "96 mL" {
		t.Errorf("FormatVolume(95.6) = %q", got)
	}
	if got := FormatVolume(-3.2); got != "-3 mL" {
		t.Errorf("FormatVolume(-3.2) = %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(decimal.NewFromInt(1150)); got != "$1,150.00" {
		t.Errorf("FormatPrice(1150) = %q", got)
	}
	if got := FormatPricePerML(decimal.RequireFromString("4.955")); got != "$4.96/mL" {
		t.Errorf("FormatPricePerML(4.955) = %q", got)
	}
	if got := FormatPrice(decimal.Zero); got != Placeholder {
		t.Errorf("FormatPrice(0) = %q, want placeholder", got)
	}
}

func TestFormatRatings(t *testing.T) {
	score := 92
	scent := 9.25
	if FormatRating(&score) != "92" || FormatRating(nil) != Placeholder {
		t.Error("FormatRating mismatch")
	}
	if FormatScent(&scent) != "9.25" || FormatScent(nil) != Placeholder {
		t.Error("FormatScent mismatch")
	}
	if FormatRank(2, 45) != "#2 of 45" {
		t.Errorf("FormatRank = %q", FormatRank(2, 45))
	}
	if FormatYear(2031, false) != Placeholder || FormatYear(2031, true) != "2031" {
		t.Error("FormatYear mismatch")
	}
}

func TestRenderTable_Alignment(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Fragrance", "Wears"},
		Rows:    [][]string{{"Aventus", "12"}, {"---"}, {"Bleu", "8"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Aventus") || !strings.Contains(out, "12") {
		t.Fatalf("table missing cells:\n%s", out)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := RenderSparkline([]float64{0, 5, 10})
	if got != "▁▄█" {
		t.Fatalf("RenderSparkline = %q, want ▁▄█", got)
	}
	if RenderSparkline(nil) != "" {
		t.Fatal("empty input should render nothing")
	}
}

func TestRenderBottles(t *testing.T) {
	out := RenderBottles([]float64{1, 0.5}, 4)
	if !strings.Contains(out, "100%") || !strings.Contains(out, "50%") {
		t.Fatalf("RenderBottles = %q", out)
	}
}
