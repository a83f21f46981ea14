package wears

import (
	"math"
	"sort"
	"time"

	"github.com/clubsmell/fragdash/internal/model"
)

// SeriesPoint is one row of the yearly cumulative-wear series.
type SeriesPoint struct {
	Year       int
	X          float64 // plotted position; the current year is compressed
	Period     string
	Uses       float64
	Cumulative float64
	Synthetic  bool // 2020 anchor or 2022 half of the combined period
}

// BuildYearlySeries turns period records into a per-year cumulative series and
// returns the average yearly growth since 2021.
//
// The 2021-2022 period was tracked as one sheet: its wears are halved, the
// 2021 half rounded down and a synthetic 2022 half rounded up, and a zero 2020
// point anchors the line. The current year is plotted at
// (year-1)+dayOfYear/365 so a partial year does not draw a full-width segment.
func BuildYearlySeries(periods []model.UsageRecord, now time.Time) ([]SeriesPoint, float64, error) {
	points := make([]SeriesPoint, 0, len(periods)+2)
	for _, r := range periods {
		year, ok := PeriodYear(r.Period)
		if !ok {
			return nil, 0, missingYear(r)
		}
		p := SeriesPoint{Year: year, Period: r.Period, Uses: r.Uses}
		if year == splitYear {
			p.Uses /= 2
			points = append(points,
				SeriesPoint{Year: splitYear - 1, Period: r.Period, Synthetic: true},
				SeriesPoint{Year: splitYear + 1, Period: r.Period, Uses: p.Uses, Synthetic: true},
			)
		}
		points = append(points, p)
	}

	for i := range points {
		if points[i].Year == splitYear {
			points[i].Uses = math.Floor(points[i].Uses)
		} else {
			points[i].Uses = math.Ceil(points[i].Uses)
		}
	}

	sort.Slice(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		if a.Synthetic != b.Synthetic {
			return !a.Synthetic
		}
		return a.Uses < b.Uses
	})

	elapsed := yearFraction(now)
	var (
		running float64
		peak    float64
	)
	for i := range points {
		running += points[i].Uses
		points[i].Cumulative = running
		if running > peak {
			peak = running
		}
		if points[i].Year == now.Year() {
			points[i].X = float64(points[i].Year-1) + elapsed
		} else {
			points[i].X = float64(points[i].Year)
		}
	}

	span := float64(now.Year()) + elapsed - baselineYear
	if span <= 0 {
		return points, 0, nil
	}
	return points, peak / span, nil
}

// yearFraction is the share of the current year already elapsed.
func yearFraction(now time.Time) float64 {
	return float64(now.YearDay()) / 365
}

// ProjectDepletionYear extrapolates the calendar year in which the remaining
// volume runs out at the given yearly wear rate. Halves round to even.
func ProjectDepletionYear(remaining, slope float64, cm ConsumptionModel, now time.Time) (int, error) {
	if math.IsNaN(slope) || math.IsInf(slope, 0) || slope <= minSlope {
		return 0, ErrDivisionByZero
	}
	if math.IsNaN(remaining) || math.IsInf(remaining, 0) {
		return 0, &model.DataIntegrityError{Column: "mL", Reason: "remaining volume is not a finite number"}
	}
	return int(math.RoundToEven(float64(now.Year()) + remaining*cm.UsesPerUnit()/slope)), nil
}
