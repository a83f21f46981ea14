// Package pipeline orchestrates workbook loading, caching, selection and
// collection-wide aggregation.
package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/wears"
)

// UnknownHouse labels wears of fragrances missing from the catalog.
const UnknownHouse = "(not in catalog)"

// AggregateItems ranks every worn fragrance and joins its house from the catalog.
func AggregateItems(records []model.UsageRecord, catalog []model.Fragrance) ([]model.ItemTotal, error) {
	items, err := wears.RankItems(records)
	if err != nil {
		return nil, err
	}
	houses := houseIndex(catalog)
	for i := range items {
		if h, ok := houses[items[i].Item]; ok {
			items[i].House = h
		} else {
			items[i].House = UnknownHouse
		}
	}
	return items, nil
}

// AggregatePeriods totals wears per period sheet, in sheet order.
func AggregatePeriods(records []model.UsageRecord) []model.PeriodStats {
	idx := make(map[string]int)
	items := make(map[string]map[string]struct{})
	var out []model.PeriodStats

	for _, r := range records {
		if r.Uses <= 0 {
			continue
		}
		i, ok := idx[r.Period]
		if !ok {
			year, _ := wears.PeriodYear(r.Period)
			out = append(out, model.PeriodStats{Period: r.Period, Year: year})
			i = len(out) - 1
			idx[r.Period] = i
			items[r.Period] = make(map[string]struct{})
		}
		out[i].Uses += r.Uses
		items[r.Period][r.Item] = struct{}{}
	}
	for i := range out {
		out[i].Fragrances = len(items[out[i].Period])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Period < out[j].Period
	})
	return out
}

// AggregateHouses totals catalog size and wears per house, most worn first.
func AggregateHouses(records []model.UsageRecord, catalog []model.Fragrance) []model.HouseStats {
	houses := houseIndex(catalog)
	byHouse := make(map[string]*model.HouseStats)
	get := func(name string) *model.HouseStats {
		hs, ok := byHouse[name]
		if !ok {
			hs = &model.HouseStats{House: name}
			byHouse[name] = hs
		}
		return hs
	}

	for _, f := range catalog {
		get(f.House).Fragrances++
	}

	tracked := make(map[string]struct{})
	for _, r := range records {
		if r.Uses <= 0 {
			continue
		}
		h, ok := houses[r.Item]
		if !ok {
			h = UnknownHouse
		}
		hs := get(h)
		hs.Uses += r.Uses
		if _, seen := tracked[r.Item]; !seen {
			tracked[r.Item] = struct{}{}
			hs.Tracked++
		}
	}

	out := make([]model.HouseStats, 0, len(byHouse))
	for _, hs := range byHouse {
		out = append(out, *hs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Uses != out[j].Uses {
			return out[i].Uses > out[j].Uses
		}
		return out[i].House < out[j].House
	})
	return out
}

// Overview computes the collection summary shown on the landing screens.
func Overview(catalog []model.Fragrance, records []model.UsageRecord) model.CollectionStats {
	stats := model.CollectionStats{
		Fragrances: len(unique(catalog, func(f model.Fragrance) string { return f.Name })),
		Houses:     len(Houses(catalog)),
		Perfumers:  len(Perfumers(catalog)),
	}

	var (
		ppmlSum   decimal.Decimal
		ppmlCount int64
		scoreSum  int
	)
	for _, f := range catalog {
		stats.TotalRetail = stats.TotalRetail.Add(f.Price)
		if !f.PricePerML.IsZero() {
			ppmlSum = ppmlSum.Add(f.PricePerML)
			ppmlCount++
		}
		if f.Score != nil {
			scoreSum += *f.Score
			stats.ScoredFragrance++
		}
	}
	if ppmlCount > 0 {
		stats.MeanPricePerML = ppmlSum.Div(decimal.NewFromInt(ppmlCount)).Round(2)
	}
	if stats.ScoredFragrance > 0 {
		stats.MeanScore = float64(scoreSum) / float64(stats.ScoredFragrance)
	}

	worn := make(map[string]struct{})
	periods := make(map[string]struct{})
	for _, r := range records {
		if r.Uses <= 0 {
			continue
		}
		stats.TotalUses += r.Uses
		worn[r.Item] = struct{}{}
		periods[r.Period] = struct{}{}
	}
	stats.Tracked = len(worn)
	stats.Periods = len(periods)
	return stats
}

// RecordsFor returns the records of one fragrance, in input order.
func RecordsFor(records []model.UsageRecord, item string) []model.UsageRecord {
	var out []model.UsageRecord
	for _, r := range records {
		if r.Item == item {
			out = append(out, r)
		}
	}
	return out
}

func houseIndex(catalog []model.Fragrance) map[string]string {
	idx := make(map[string]string, len(catalog))
	for _, f := range catalog {
		if _, ok := idx[f.Name]; !ok {
			idx[f.Name] = f.House
		}
	}
	return idx
}
