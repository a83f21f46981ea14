// Package wears computes per-fragrance wear statistics, the yearly cumulative
// series used for charting, and remaining-volume projections.
//
// Every function here is pure: inputs are never mutated and the current time is
// passed in by the caller.
package wears

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/clubsmell/fragdash/internal/model"
)

// ErrDivisionByZero is returned when a depletion year cannot be projected
// because the item shows no wear growth.
var ErrDivisionByZero = errors.New("wear growth slope is zero")

const (
	// splitYear is the first year of the combined 2021-2022 tracking period.
	splitYear = 2021
	// baselineYear anchors the growth slope.
	baselineYear = 2021
	// minSlope is the smallest growth slope a projection is made from.
	minSlope = 1e-9
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// ConsumptionModel converts wears into bottle volume.
type ConsumptionModel struct {
	SpraysPerUnit float64 // sprays in one mL
	SpraysPerUse  float64 // sprays per wear
}

// DefaultConsumption assumes 12 sprays per mL and 4 sprays per wear, so three
// wears use up one mL.
var DefaultConsumption = ConsumptionModel{SpraysPerUnit: 12, SpraysPerUse: 4}

// UsesPerUnit returns the number of wears that deplete one mL.
func (m ConsumptionModel) UsesPerUnit() float64 {
	if m.SpraysPerUnit <= 0 || m.SpraysPerUse <= 0 {
		return DefaultConsumption.SpraysPerUnit / DefaultConsumption.SpraysPerUse
	}
	return m.SpraysPerUnit / m.SpraysPerUse
}

// Summary holds the all-time statistics of one tracked fragrance.
type Summary struct {
	Item            string
	TotalUses       float64
	Rank            int // 1 = most worn, ties share the lower number
	RankedItems     int // distinct fragrances with at least one wear
	ContainerVolume float64
	Backups         int
	StartingVolume  float64 // ContainerVolume * (1 + Backups)
	RemainingVolume float64 // may be negative when wears exceed capacity
	Periods         []model.UsageRecord
}

// PeriodYear extracts the first 4-digit year from a period label.
func PeriodYear(label string) (int, bool) {
	tok := yearPattern.FindString(label)
	if tok == "" {
		return 0, false
	}
	y, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return y, true
}

// Totals sums wears per item. Records with zero wears are ignored.
func Totals(records []model.UsageRecord) (map[string]float64, error) {
	totals := make(map[string]float64)
	for _, r := range records {
		if math.IsNaN(r.Uses) || r.Uses < 0 {
			return nil, &model.DataIntegrityError{
				Sheet:  r.Period,
				Row:    r.Row,
				Column: "Wears",
				Value:  strconv.FormatFloat(r.Uses, 'f', -1, 64),
				Reason: "wear count must be a non-negative number",
			}
		}
		if r.Uses == 0 {
			continue
		}
		totals[r.Item] += r.Uses
	}
	return totals, nil
}

// Summarize computes the statistics for item across all records.
// tracked is false, with a nil error, when item has no wears at all.
func Summarize(records []model.UsageRecord, item string, cm ConsumptionModel) (s Summary, tracked bool, err error) {
	totals, err := Totals(records)
	if err != nil {
		return Summary{}, false, err
	}
	total, ok := totals[item]
	if !ok {
		return Summary{}, false, nil
	}

	var periods []model.UsageRecord
	for _, r := range records {
		if r.Item == item && r.Uses > 0 {
			periods = append(periods, r)
		}
	}

	last, err := latestRecord(periods)
	if err != nil {
		return Summary{}, false, err
	}
	if math.IsNaN(last.ContainerVolume) || last.ContainerVolume <= 0 {
		return Summary{}, false, &model.DataIntegrityError{
			Sheet:  last.Period,
			Row:    last.Row,
			Column: "mL",
			Value:  strconv.FormatFloat(last.ContainerVolume, 'f', -1, 64),
			Reason: "container volume must be positive",
		}
	}
	if last.Backups < 0 {
		return Summary{}, false, &model.DataIntegrityError{
			Sheet:  last.Period,
			Row:    last.Row,
			Column: "Backups",
			Value:  strconv.Itoa(last.Backups),
			Reason: "backup count must not be negative",
		}
	}

	rank := 1
	for other, t := range totals {
		if other != item && t > total {
			rank++
		}
	}

	start := last.ContainerVolume * float64(1+last.Backups)
	return Summary{
		Item:            item,
		TotalUses:       total,
		Rank:            rank,
		RankedItems:     len(totals),
		ContainerVolume: last.ContainerVolume,
		Backups:         last.Backups,
		StartingVolume:  start,
		RemainingVolume: RemainingVolume(start, total, cm),
		Periods:         periods,
	}, true, nil
}

// RemainingVolume estimates the mL left after uses wears of a starting volume.
func RemainingVolume(starting, uses float64, cm ConsumptionModel) float64 {
	return starting - uses/cm.UsesPerUnit()
}

// latestRecord returns the chronologically last record: highest period year,
// and the later input position within the same year.
func latestRecord(records []model.UsageRecord) (model.UsageRecord, error) {
	var (
		best     model.UsageRecord
		bestYear = math.MinInt
	)
	for _, r := range records {
		y, ok := PeriodYear(r.Period)
		if !ok {
			return model.UsageRecord{}, missingYear(r)
		}
		if y >= bestYear {
			best, bestYear = r, y
		}
	}
	return best, nil
}

func missingYear(r model.UsageRecord) error {
	return &model.DataIntegrityError{
		Sheet:  r.Period,
		Row:    r.Row,
		Column: "period",
		Value:  r.Period,
		Reason: "period label has no 4-digit year",
	}
}

// RankItems returns every item's all-time total, most worn first. Equal totals
// are ordered by name and share a rank.
func RankItems(records []model.UsageRecord) ([]model.ItemTotal, error) {
	totals, err := Totals(records)
	if err != nil {
		return nil, err
	}

	items := make([]model.ItemTotal, 0, len(totals))
	for name, t := range totals {
		items = append(items, model.ItemTotal{Item: name, Uses: t})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Uses != items[j].Uses {
			return items[i].Uses > items[j].Uses
		}
		return items[i].Item < items[j].Item
	})
	for i := range items {
		if i > 0 && items[i].Uses == items[i-1].Uses {
			items[i].Rank = items[i-1].Rank
		} else {
			items[i].Rank = i + 1
		}
	}
	return items, nil
}
