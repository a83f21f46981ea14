package wears

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/clubsmell/fragdash/internal/model"
)

func rec(item, period string, uses, ml float64, backups int) model.UsageRecord {
	return model.UsageRecord{Item: item, Period: period, Uses: uses, ContainerVolume: ml, Backups: backups}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func sampleRecords() []model.UsageRecord {
	return []model.UsageRecord{
		rec("Aventus", "Wears for 2021-2022", 7, 50, 1),
		rec("Aventus", "Wears for 2023", 5, 50, 1),
		rec("Bleu", "Wears for 2021-2022", 12, 100, 0),
		rec("Bleu", "Wears for 2023", 8, 100, 0),
		rec("Cuir", "Wears for 2023", 12, 30, 0),
		rec("Dune", "Wears for 2023", 0, 100, 0),
	}
}

func TestSummarize_NotTracked(t *testing.T) {
	s, tracked, err := Summarize(sampleRecords(), "Eros", DefaultConsumption)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracked {
		t.Fatalf("Eros reported as tracked: %+v", s)
	}
}

func TestSummarize_ZeroWearsOnlyIsNotTracked(t *testing.T) {
	_, tracked, err := Summarize(sampleRecords(), "Dune", DefaultConsumption)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracked {
		t.Fatal("Dune has only a zero-wear row and should not be tracked")
	}
}

func TestSummarize_TotalsAndVolume(t *testing.T) {
	s, tracked, err := Summarize(sampleRecords(), "Aventus", DefaultConsumption)
	if err != nil || !tracked {
		t.Fatalf("Summarize = tracked %v, err %v", tracked, err)
	}
	if s.TotalUses != 12 {
		t.Errorf("TotalUses = %v, want 12", s.TotalUses)
	}
	if s.StartingVolume != 100 {
		t.Errorf("StartingVolume = %v, want 100 (50 mL + 1 backup)", s.StartingVolume)
	}
	if !approx(s.RemainingVolume, 96) {
		t.Errorf("RemainingVolume = %v, want 96", s.RemainingVolume)
	}
	if len(s.Periods) != 2 {
		t.Errorf("Periods len = %d, want 2", len(s.Periods))
	}
	if s.RankedItems != 3 {
		t.Errorf("RankedItems = %d, want 3", s.RankedItems)
	}
}

func TestSummarize_TiesShareLowerRank(t *testing.T) {
	records := sampleRecords()
	for item, want := range map[string]int{"Bleu": 1, "Aventus": 2, "Cuir": 2} {
		s, _, err := Summarize(records, item, DefaultConsumption)
		if err != nil {
			t.Fatalf("%s: %v", item, err)
		}
		if s.Rank != want {
			t.Errorf("%s rank = %d, want %d", item, s.Rank, want)
		}
	}
}

func TestSummarize_RankOrdering(t *testing.T) {
	var records []model.UsageRecord
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for i, n := range names {
		records = append(records, rec(n, "Wears for 2023", float64(i+1), 50, 0))
	}

	prevRank := 0
	for i := len(names) - 1; i >= 0; i-- {
		s, _, err := Summarize(records, names[i], DefaultConsumption)
		if err != nil {
			t.Fatal(err)
		}
		if s.Rank < 1 || s.Rank > len(names) {
			t.Fatalf("%s rank %d out of [1,%d]", names[i], s.Rank, len(names))
		}
		if s.Rank <= prevRank {
			t.Fatalf("%s rank %d not greater than previous %d", names[i], s.Rank, prevRank)
		}
		prevRank = s.Rank
	}
}

func TestSummarize_LatestVolumeWins(t *testing.T) {
	records := []model.UsageRecord{
		rec("Aventus", "Wears for 2024", 3, 100, 2),
		rec("Aventus", "Wears for 2021-2022", 4, 50, 0),
		rec("Aventus", "Wears for 2023", 2, 75, 1),
	}
	s, _, err := Summarize(records, "Aventus", DefaultConsumption)
	if err != nil {
		t.Fatal(err)
	}
	if s.ContainerVolume != 100 || s.Backups != 2 {
		t.Fatalf("volume/backups = %v/%d, want 100/2 from the 2024 sheet", s.ContainerVolume, s.Backups)
	}
	if s.StartingVolume != 300 {
		t.Errorf("StartingVolume = %v, want 300", s.StartingVolume)
	}
}

func TestSummarize_RemainingMayGoNegative(t *testing.T) {
	records := []model.UsageRecord{rec("Tiny", "Wears for 2023", 60, 10, 0)}
	s, _, err := Summarize(records, "Tiny", DefaultConsumption)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(s.RemainingVolume, -10) {
		t.Errorf("RemainingVolume = %v, want -10 (no clamping)", s.RemainingVolume)
	}
}

func TestSummarize_DataIntegrity(t *testing.T) {
	cases := map[string][]model.UsageRecord{
		"zero volume":   {rec("X", "Wears for 2023", 3, 0, 0)},
		"negative uses": {rec("X", "Wears for 2023", -1, 50, 0)},
		"no year":       {rec("X", "Wears for ever", 3, 50, 0)},
		"neg backups":   {rec("X", "Wears for 2023", 3, 50, -2)},
	}
	for name, records := range cases {
		_, _, err := Summarize(records, "X", DefaultConsumption)
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !IsDataIntegrity(err) {
			t.Errorf("%s: error %v is not a DataIntegrityError", name, err)
		}
	}
}

func TestRemainingVolume_NoWears(t *testing.T) {
	if got := RemainingVolume(100, 0, DefaultConsumption); got != 100 {
		t.Fatalf("RemainingVolume(100, 0) = %v, want exactly 100", got)
	}
}

func TestConsumptionModel_Fallback(t *testing.T) {
	if got := DefaultConsumption.UsesPerUnit(); got != 3 {
		t.Fatalf("default UsesPerUnit = %v, want 3", got)
	}
	if got := (ConsumptionModel{}).UsesPerUnit(); got != 3 {
		t.Fatalf("zero-value UsesPerUnit = %v, want default 3", got)
	}
	if got := (ConsumptionModel{SpraysPerUnit: 10, SpraysPerUse: 5}).UsesPerUnit(); got != 2 {
		t.Fatalf("custom UsesPerUnit = %v, want 2", got)
	}
}

func TestRankItems(t *testing.T) {
	items, err := RankItems(sampleRecords())
	if err != nil {
		t.Fatal(err)
	}
	want := []model.ItemTotal{
		{Item: "Bleu", Uses: 20, Rank: 1},
		{Item: "Aventus", Uses: 12, Rank: 2},
		{Item: "Cuir", Uses: 12, Rank: 2},
	}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("RankItems = %+v, want %+v", items, want)
	}
}

func TestBuildYearlySeries_SplitsCombinedPeriod(t *testing.T) {
	now := mustDay(t, "2024-07-01")
	points, _, err := BuildYearlySeries([]model.UsageRecord{
		rec("A", "Wears for 2021-2022", 7, 50, 0),
	}, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3: %+v", len(points), points)
	}

	wantYears := []int{2020, 2021, 2022}
	wantUses := []float64{0, 3, 4}
	wantCum := []float64{0, 3, 7}
	for i, p := range points {
		if p.Year != wantYears[i] || p.Uses != wantUses[i] || p.Cumulative != wantCum[i] {
			t.Errorf("point %d = {%d %v %v}, want {%d %v %v}",
				i, p.Year, p.Uses, p.Cumulative, wantYears[i], wantUses[i], wantCum[i])
		}
	}
	if !points[0].Synthetic || points[1].Synthetic || !points[2].Synthetic {
		t.Errorf("synthetic flags = %v %v %v, want true false true",
			points[0].Synthetic, points[1].Synthetic, points[2].Synthetic)
	}
}

func TestBuildYearlySeries_CurrentYearCompressed(t *testing.T) {
	now := mustDay(t, "2024-07-01")
	points, slope, err := BuildYearlySeries([]model.UsageRecord{
		rec("A", "Wears for 2021-2022", 7, 50, 0),
		rec("A", "Wears for 2023", 5, 50, 0),
		rec("A", "Wears for 2024", 3, 50, 0),
	}, now)
	if err != nil {
		t.Fatal(err)
	}

	last := points[len(points)-1]
	if last.Year != 2024 {
		t.Fatalf("last year = %d, want 2024", last.Year)
	}
	frac := float64(now.YearDay()) / 365
	if !approx(last.X, 2023+frac) {
		t.Errorf("current-year X = %v, want %v", last.X, 2023+frac)
	}
	if last.Cumulative != 15 {
		t.Errorf("final cumulative = %v, want 15", last.Cumulative)
	}
	if points[len(points)-2].X != 2023 {
		t.Errorf("2023 X = %v, want 2023", points[len(points)-2].X)
	}

	wantSlope := 15 / (2024 + frac - 2021)
	if !approx(slope, wantSlope) {
		t.Errorf("slope = %v, want %v", slope, wantSlope)
	}
}

func TestBuildYearlySeries_ShuffleInvariant(t *testing.T) {
	now := mustDay(t, "2025-03-10")
	records := []model.UsageRecord{
		rec("A", "Wears for 2021-2022", 9, 50, 0),
		rec("A", "Wears for 2023", 4, 50, 0),
		rec("A", "Wears for 2023", 2, 50, 0),
		rec("A", "Wears for 2024", 6, 50, 0),
		rec("A", "Wears for 2025", 1, 50, 0),
	}
	want, wantSlope, err := BuildYearlySeries(records, now)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.UsageRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, slope, err := BuildYearlySeries(shuffled, now)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, want) || slope != wantSlope {
			t.Fatalf("shuffle %d changed the series:\n got %+v\nwant %+v", i, got, want)
		}
	}
}

func TestBuildYearlySeries_DoesNotMutateInput(t *testing.T) {
	records := []model.UsageRecord{rec("A", "Wears for 2021-2022", 7, 50, 0)}
	if _, _, err := BuildYearlySeries(records, mustDay(t, "2024-01-15")); err != nil {
		t.Fatal(err)
	}
	if records[0].Uses != 7 {
		t.Fatalf("input uses changed to %v", records[0].Uses)
	}
}

func TestBuildYearlySeries_MissingYear(t *testing.T) {
	_, _, err := BuildYearlySeries([]model.UsageRecord{rec("A", "Wears", 1, 50, 0)}, time.Now())
	if !IsDataIntegrity(err) {
		t.Fatalf("err = %v, want DataIntegrityError", err)
	}
}

func TestProjectDepletionYear(t *testing.T) {
	now := mustDay(t, "2024-05-01")
	year, err := ProjectDepletionYear(10, 3, DefaultConsumption, now)
	if err != nil {
		t.Fatal(err)
	}
	if year != 2034 {
		t.Errorf("year = %d, want 2034", year)
	}

	// Negative remaining volume projects into the past.
	year, err = ProjectDepletionYear(-2, 6, DefaultConsumption, now)
	if err != nil {
		t.Fatal(err)
	}
	if year != 2023 {
		t.Errorf("year = %d, want 2023", year)
	}
}

func TestProjectDepletionYear_ZeroSlope(t *testing.T) {
	now := mustDay(t, "2024-05-01")
	for _, slope := range []float64{0, -1, 1e-12, math.NaN(), math.Inf(1)} {
		year, err := ProjectDepletionYear(50, slope, DefaultConsumption, now)
		if !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("slope %v: err = %v, want ErrDivisionByZero", slope, err)
		}
		if year != 0 {
			t.Errorf("slope %v: year = %d, want 0", slope, year)
		}
	}
}

func TestBottleFillFractions(t *testing.T) {
	cases := []struct {
		remaining, perUnit float64
		backups            int
		want               []float64
	}{
		{5, 10, 2, []float64{0.5, 0, 0}},
		{25, 10, 2, []float64{1, 1, 0.5}},
		{-3, 10, 1, []float64{0, 0}},
		{40, 10, 0, []float64{1}},
		{5, 0, 1, []float64{0, 0}},
	}
	for _, tc := range cases {
		got := BottleFillFractions(tc.remaining, tc.perUnit, tc.backups)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("BottleFillFractions(%v, %v, %d) = %v, want %v",
				tc.remaining, tc.perUnit, tc.backups, got, tc.want)
		}
	}
}

func TestBottleScale(t *testing.T) {
	if got := BottleScale(600, 30, 600); got != 1 {
		t.Errorf("600 mL scale = %v, want 1", got)
	}
	if got := BottleScale(315, 30, 600); !approx(got, 0.5) {
		t.Errorf("315 mL scale = %v, want 0.5", got)
	}
	if got := BottleScale(5, 30, 600); got != 0.1 {
		t.Errorf("5 mL scale = %v, want clamp 0.1", got)
	}
	if got := BottleScale(315, 0, 0); !approx(got, 0.5) {
		t.Errorf("bad range should fall back to defaults, got %v", got)
	}
}

func TestAnalyze(t *testing.T) {
	now := mustDay(t, "2024-07-01")
	records := sampleRecords()

	if r := Analyze(records, "Nobody", DefaultConsumption, now); r.Status != StatusNotTracked {
		t.Errorf("Nobody status = %v, want not_tracked", r.Status)
	}

	r := Analyze(records, "Aventus", DefaultConsumption, now)
	if r.Status != StatusTracked {
		t.Fatalf("Aventus status = %v (%v)", r.Status, r.Err)
	}
	if !r.HasDepletionYear() {
		t.Fatalf("expected a projection, got %v", r.DepletionErr)
	}
	if len(r.Fill) != 2 || r.Fill[0] != 1 || r.Fill[1] >= 1 {
		t.Errorf("Fill = %v, want [1, <1]", r.Fill)
	}
	if len(r.StartFill) != 2 || r.StartFill[1] != 1 {
		t.Errorf("StartFill = %v, want all full", r.StartFill)
	}

	bad := append(records, rec("Broken", "Wears for 2023", 2, 0, 0))
	if r := Analyze(bad, "Broken", DefaultConsumption, now); r.Status != StatusFailed || !IsDataIntegrity(r.Err) {
		t.Errorf("Broken status = %v err = %v, want failed with DataIntegrityError", r.Status, r.Err)
	}
}

func TestAnalyze_NoGrowthLeavesPlaceholder(t *testing.T) {
	// Before the baseline year there is no elapsed span to divide by.
	now := mustDay(t, "2020-06-01")
	r := Analyze([]model.UsageRecord{rec("A", "Wears for 2021-2022", 4, 50, 0)}, "A", DefaultConsumption, now)
	if r.Status != StatusTracked {
		t.Fatalf("status = %v, want tracked", r.Status)
	}
	if !errors.Is(r.DepletionErr, ErrDivisionByZero) {
		t.Fatalf("DepletionErr = %v, want ErrDivisionByZero", r.DepletionErr)
	}

	e := r.Export()
	if e.RunOutYear != nil {
		t.Errorf("RunOutYear = %d, want nil", *e.RunOutYear)
	}
	if e.ProjectionErr == "" {
		t.Error("ProjectionErr should explain the missing projection")
	}
}

func TestExport_KeepsEmptiedBottle(t *testing.T) {
	now := mustDay(t, "2024-03-01")
	records := []model.UsageRecord{rec("Empty", "Wears for 2023", 150, 50, 0)}

	r := Analyze(records, "Empty", DefaultConsumption, now)
	if r.Status != StatusTracked || r.Summary.RemainingVolume != 0 {
		t.Fatalf("status = %v remaining = %v, want tracked with 0 mL", r.Status, r.Summary.RemainingVolume)
	}
	out, err := json.Marshal(r.Export())
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"remaining_ml":0`, `"backups":0`, `"starting_ml":50`} {
		if !strings.Contains(string(out), field) {
			t.Errorf("export %s missing %s", out, field)
		}
	}

	untracked, err := json.Marshal(Analyze(records, "Other", DefaultConsumption, now).Export())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(untracked), "remaining_ml") {
		t.Errorf("untracked export carries volumes: %s", untracked)
	}
}
