package pipeline

import (
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/store"
	"github.com/clubsmell/fragdash/internal/testutil"
	"github.com/clubsmell/fragdash/internal/wears"
)

func loadFixture(t *testing.T) *LoadResult {
	t.Helper()
	path := testutil.WriteWorkbook(t, testutil.Collection()...)
	res, err := Load(path, Options{}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return res
}

func TestLoad(t *testing.T) {
	var (
		mu          sync.Mutex
		calls, last int
	)
	path := testutil.WriteWorkbook(t, testutil.Collection()...)
	res, err := Load(path, Options{}, func(current, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if current > last {
			last = current
		}
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if calls != 3 || last != 3 {
		t.Errorf("progress called %d times, max %d; want 3/3", calls, last)
	}
	if res.ParsedSheets != 3 || res.SheetErrors != 0 {
		t.Errorf("sheets parsed/errors = %d/%d", res.ParsedSheets, res.SheetErrors)
	}
	if len(res.Catalog) != 4 {
		t.Errorf("catalog = %d fragrances, want 4", len(res.Catalog))
	}
	if len(res.Issues) != 0 {
		t.Errorf("unexpected issues: %v", res.Issues)
	}

	wantPeriods := []string{"Wears for 2021-2022", "Wears for 2023"}
	if !reflect.DeepEqual(res.Periods, wantPeriods) {
		t.Errorf("Periods = %v, want %v", res.Periods, wantPeriods)
	}
	if len(res.Records) != 4 || res.Records[0].Period != "Wears for 2021-2022" || res.Records[3].Period != "Wears for 2023" {
		t.Errorf("records not in sheet order: %+v", res.Records)
	}
}

func TestLoad_MissingCatalog(t *testing.T) {
	path := testutil.WriteWorkbook(t, testutil.Collection()...)
	if _, err := Load(path, Options{CatalogSheet: "Missing"}, nil); err == nil {
		t.Fatal("expected error for missing catalog sheet")
	}
}

func TestLoad_BadRowsBecomeIssues(t *testing.T) {
	sheets := testutil.Collection()
	sheets = append(sheets, testutil.Sheet{Name: "Wears for 2024", Rows: [][]any{
		testutil.WearsHeader,
		{"Aventus", 2, "fifty", 1},
		{"Dune", 3, 50, 0},
	}})
	path := testutil.WriteWorkbook(t, sheets...)

	res, err := Load(path, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Issues) != 1 {
		t.Fatalf("Issues = %v, want one", res.Issues)
	}
	if len(res.Records) != 5 {
		t.Fatalf("records = %d, want 5", len(res.Records))
	}
}

func TestLoadWithCache(t *testing.T) {
	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	path := testutil.WriteWorkbook(t, testutil.Collection()...)

	first, err := LoadWithCache(path, Options{}, cache, nil)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.CacheHit {
		t.Fatal("first load should parse the workbook")
	}

	second, err := LoadWithCache(path, Options{}, cache, nil)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second load should come from the cache")
	}
	if !reflect.DeepEqual(second.Records, first.Records) || !reflect.DeepEqual(second.Periods, first.Periods) {
		t.Fatalf("cached data differs:\n got %+v\nwant %+v", second.Records, first.Records)
	}
	if len(second.Catalog) != len(first.Catalog) || second.Catalog[0].Name != "Aventus" {
		t.Fatalf("cached catalog = %+v", second.Catalog)
	}

	other, err := LoadWithCache(path, Options{WearsPrefix: "2023"}, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if other.CacheHit || len(other.Periods) != 1 {
		t.Fatalf("different options must not share a cache entry: hit=%v periods=%v", other.CacheHit, other.Periods)
	}

	sheets := append(testutil.Collection(), testutil.Sheet{Name: "Wears for 2024", Rows: [][]any{
		testutil.WearsHeader,
		{"Dune", 4, 50, 0},
	}})
	testutil.SaveWorkbook(t, path, sheets...)

	third, err := LoadWithCache(path, Options{}, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Fatal("changed workbook should be reparsed")
	}
	if len(third.Periods) != 3 {
		t.Fatalf("Periods = %v, want 3 sheets", third.Periods)
	}
}

func TestCacheCountsAndForget(t *testing.T) {
	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	path := testutil.WriteWorkbook(t, testutil.Collection()...)
	res, err := LoadWithCache(path, Options{}, cache, nil)
	if err != nil {
		t.Fatal(err)
	}

	frags, records, err := CacheCounts(cache, path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if frags != len(res.Catalog) || records != len(res.Records) {
		t.Fatalf("CacheCounts = %d, %d; want %d, %d", frags, records, len(res.Catalog), len(res.Records))
	}

	if err := ForgetCache(cache, path, Options{}); err != nil {
		t.Fatal(err)
	}
	if frags, _, _ := CacheCounts(cache, path, Options{}); frags != 0 {
		t.Fatalf("after ForgetCache %d fragrances remain", frags)
	}
	again, err := LoadWithCache(path, Options{}, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.CacheHit {
		t.Fatal("forgotten workbook should be reparsed")
	}
}

func TestSelectionCascade(t *testing.T) {
	catalog := loadFixture(t).Catalog

	if got, want := Houses(catalog), []string{"Creed", "Chanel", "Dior"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Houses = %v, want %v", got, want)
	}
	if got := Perfumers(catalog); len(got) != 4 {
		t.Errorf("Perfumers = %v, want 4", got)
	}
	if got, want := FragranceOptions(catalog, Selection{Mode: ModeHouse, Value: "Chanel"}), []string{"Bleu de Chanel", "Cuir de Russie"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Chanel options = %v, want %v", got, want)
	}
	if got := FragranceOptions(catalog, Selection{Mode: ModeAll}); len(got) != 4 {
		t.Errorf("all options = %v", got)
	}
}

func TestResolve(t *testing.T) {
	catalog := loadFixture(t).Catalog

	cases := []struct {
		name      string
		in        Selection
		wantValue string
		wantFrag  string
	}{
		{"house default fragrance", Selection{Mode: ModeHouse, Value: "Chanel"}, "Chanel", "Bleu de Chanel"},
		{"stale house", Selection{Mode: ModeHouse, Value: "Nope", Fragrance: "Dune"}, "Creed", "Aventus"},
		{"all keeps fragrance", Selection{Mode: ModeAll, Value: "x", Fragrance: "Dune"}, "", "Dune"},
		{"perfumer narrows", Selection{Mode: ModePerfumer, Value: "Ernest Beaux", Fragrance: "Aventus"}, "Ernest Beaux", "Cuir de Russie"},
	}
	for _, tc := range cases {
		sel, f, err := Resolve(catalog, tc.in)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if sel.Value != tc.wantValue || sel.Fragrance != tc.wantFrag || f.Name != tc.wantFrag {
			t.Errorf("%s: got %+v / %s, want value %q fragrance %q", tc.name, sel, f.Name, tc.wantValue, tc.wantFrag)
		}
	}

	if _, _, err := Resolve(nil, Selection{Mode: ModeAll}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("empty catalog err = %v, want ErrNotFound", err)
	}
}

func TestLookup(t *testing.T) {
	catalog := loadFixture(t).Catalog
	f, err := Lookup(catalog, "dune")
	if err != nil || f.Name != "Dune" {
		t.Fatalf("Lookup(dune) = %+v, %v", f, err)
	}
	if _, err := Lookup(catalog, "Eros"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Lookup(Eros) err = %v, want ErrNotFound", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"house": ModeHouse, "Perfumer": ModePerfumer, "ALL": ModeAll, "": ModeHouse} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("brand"); err == nil {
		t.Error("ParseMode(brand) should fail")
	}
}

func TestFilterByQuery(t *testing.T) {
	catalog := loadFixture(t).Catalog
	got := FilterByQuery(catalog, "chanel")
	if len(got) != 2 {
		t.Fatalf("FilterByQuery(chanel) = %d results, want 2", len(got))
	}
	if len(FilterByQuery(catalog, "  ")) != len(catalog) {
		t.Fatal("blank query should return the whole catalog")
	}
}

func TestAggregations(t *testing.T) {
	res := loadFixture(t)

	items, err := AggregateItems(res.Records, res.Catalog)
	if err != nil {
		t.Fatal(err)
	}
	wantItems := []model.ItemTotal{
		{Item: "Bleu de Chanel", House: "Chanel", Uses: 20, Rank: 1},
		{Item: "Aventus", House: "Creed", Uses: 12, Rank: 2},
	}
	if !reflect.DeepEqual(items, wantItems) {
		t.Errorf("AggregateItems = %+v, want %+v", items, wantItems)
	}

	periods := AggregatePeriods(res.Records)
	wantPeriods := []model.PeriodStats{
		{Period: "Wears for 2021-2022", Year: 2021, Fragrances: 2, Uses: 19},
		{Period: "Wears for 2023", Year: 2023, Fragrances: 2, Uses: 13},
	}
	if !reflect.DeepEqual(periods, wantPeriods) {
		t.Errorf("AggregatePeriods = %+v, want %+v", periods, wantPeriods)
	}

	houses := AggregateHouses(res.Records, res.Catalog)
	wantHouses := []model.HouseStats{
		{House: "Chanel", Fragrances: 2, Tracked: 1, Uses: 20},
		{House: "Creed", Fragrances: 1, Tracked: 1, Uses: 12},
		{House: "Dior", Fragrances: 1, Tracked: 0, Uses: 0},
	}
	if !reflect.DeepEqual(houses, wantHouses) {
		t.Errorf("AggregateHouses = %+v, want %+v", houses, wantHouses)
	}
}

func TestAggregateHouses_Uncatalogued(t *testing.T) {
	records := []model.UsageRecord{{Item: "Mystery", Period: "Wears for 2023", Uses: 3, ContainerVolume: 10}}
	houses := AggregateHouses(records, nil)
	if len(houses) != 1 || houses[0].House != UnknownHouse || houses[0].Tracked != 1 {
		t.Fatalf("AggregateHouses = %+v", houses)
	}
}

func TestOverview(t *testing.T) {
	res := loadFixture(t)
	s := Overview(res.Catalog, res.Records)

	if s.Fragrances != 4 || s.Houses != 3 || s.Perfumers != 4 {
		t.Errorf("counts = %d/%d/%d, want 4/3/4", s.Fragrances, s.Houses, s.Perfumers)
	}
	if s.Tracked != 2 || s.TotalUses != 32 || s.Periods != 2 {
		t.Errorf("wear stats = %d/%v/%d, want 2/32/2", s.Tracked, s.TotalUses, s.Periods)
	}
	if !s.TotalRetail.Equal(decimal.NewFromInt(1105)) {
		t.Errorf("TotalRetail = %s, want 1105", s.TotalRetail)
	}
	if !s.MeanPricePerML.Equal(decimal.RequireFromString("2.64")) {
		t.Errorf("MeanPricePerML = %s, want 2.64", s.MeanPricePerML)
	}
	if s.ScoredFragrance != 3 {
		t.Errorf("ScoredFragrance = %d, want 3", s.ScoredFragrance)
	}
}

func TestAggregateValue(t *testing.T) {
	res := loadFixture(t)
	totals, rows, err := AggregateValue(res.Catalog, res.Records, wears.DefaultConsumption)
	if err != nil {
		t.Fatalf("AggregateValue: %v", err)
	}

	if totals.Priced != 2 || len(rows) != 2 {
		t.Fatalf("priced = %d rows = %d, want 2", totals.Priced, len(rows))
	}
	if rows[0].Item != "Bleu de Chanel" {
		t.Errorf("cheapest wear = %s, want Bleu de Chanel", rows[0].Item)
	}
	if !rows[1].CostPerWear.Equal(decimal.RequireFromString("1.65")) {
		t.Errorf("Aventus cost per wear = %s, want 1.65", rows[1].CostPerWear)
	}
	if !rows[1].WornValue.Equal(decimal.RequireFromString("19.8")) {
		t.Errorf("Aventus worn value = %s, want 19.8", rows[1].WornValue)
	}
	if !rows[1].RemainingValue.Equal(decimal.RequireFromString("475.2")) {
		t.Errorf("Aventus remaining value = %s, want 475.2", rows[1].RemainingValue)
	}
	if !totals.WornValue.Equal(decimal.RequireFromString("29.8")) {
		t.Errorf("total worn value = %s, want 29.8", totals.WornValue)
	}
}

func TestAggregateValue_ReportsIntegrityFailures(t *testing.T) {
	catalog := []model.Fragrance{
		{Name: "A", House: "H", PricePerML: decimal.NewFromInt(2)},
		{Name: "B", House: "H", PricePerML: decimal.NewFromInt(3)},
	}
	records := []model.UsageRecord{
		{Item: "A", Period: "Wears for 2023", Uses: 4, ContainerVolume: 50},
		{Item: "B", Period: "Wears for spring", Uses: 2, ContainerVolume: 50, Row: 3},
	}

	totals, rows, err := AggregateValue(catalog, records, wears.DefaultConsumption)
	if err == nil {
		t.Fatal("expected an error for the period without a year")
	}
	if !wears.IsDataIntegrity(err) {
		t.Errorf("err = %v, want a data integrity error", err)
	}
	if totals.Priced != 1 || len(rows) != 1 || rows[0].Item != "A" {
		t.Fatalf("priced = %d rows = %+v, want only A", totals.Priced, rows)
	}
}

func BenchmarkLoad(b *testing.B) {
	path := testutil.WriteWorkbook(b, testutil.Collection()...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load(path, Options{}, nil); err != nil {
			b.Fatal(err)
		}
	}
}
