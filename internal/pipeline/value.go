package pipeline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/wears"
)

// WearValue is the retail value consumed and left for one worn fragrance.
type WearValue struct {
	Item           string
	House          string
	Uses           float64
	PricePerML     decimal.Decimal
	CostPerWear    decimal.Decimal // juice cost of one wear at retail $/mL
	WornValue      decimal.Decimal
	RemainingValue decimal.Decimal // never negative
}

// ValueTotals sums WearValue across the collection.
type ValueTotals struct {
	Priced         int
	WornValue      decimal.Decimal
	RemainingValue decimal.Decimal
}

// CostPerWear returns the retail cost of the juice used by one wear.
func CostPerWear(pricePerML decimal.Decimal, cm wears.ConsumptionModel) decimal.Decimal {
	return pricePerML.Div(decimal.NewFromFloat(cm.UsesPerUnit())).Round(4)
}

// AggregateValue prices the wear history of every worn fragrance with a
// known retail $/mL, cheapest wear first. Items whose records fail the
// calculator's integrity checks are left out of the rows and reported in the
// joined error, so callers get the priced rows alongside the failures.
func AggregateValue(catalog []model.Fragrance, records []model.UsageRecord, cm wears.ConsumptionModel) (ValueTotals, []WearValue, error) {
	items, err := wears.RankItems(records)
	if err != nil {
		return ValueTotals{}, nil, fmt.Errorf("ranking wears: %w", err)
	}

	byName := make(map[string]model.Fragrance, len(catalog))
	for _, f := range catalog {
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = f
		}
	}

	var (
		totals ValueTotals
		rows   []WearValue
		errs   []error
	)
	for _, it := range items {
		f, ok := byName[it.Item]
		if !ok || f.PricePerML.IsZero() {
			continue
		}
		sum, tracked, err := wears.Summarize(records, it.Item, cm)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", it.Item, err))
			continue
		}
		if !tracked {
			continue
		}

		cpw := CostPerWear(f.PricePerML, cm)
		row := WearValue{
			Item:           it.Item,
			House:          f.House,
			Uses:           it.Uses,
			PricePerML:     f.PricePerML,
			CostPerWear:    cpw,
			WornValue:      cpw.Mul(decimal.NewFromFloat(it.Uses)).Round(2),
			RemainingValue: f.PricePerML.Mul(decimal.NewFromFloat(math.Max(sum.RemainingVolume, 0))).Round(2),
		}
		rows = append(rows, row)
		totals.Priced++
		totals.WornValue = totals.WornValue.Add(row.WornValue)
		totals.RemainingValue = totals.RemainingValue.Add(row.RemainingValue)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CostPerWear.LessThan(rows[j].CostPerWear)
	})
	return totals, rows, errors.Join(errs...)
}
