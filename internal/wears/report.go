package wears

import (
	"errors"
	"time"

	"github.com/clubsmell/fragdash/internal/model"
)

// Status tags the outcome of Analyze.
type Status int

const (
	StatusTracked Status = iota
	StatusNotTracked
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusTracked:
		return "tracked"
	case StatusNotTracked:
		return "not_tracked"
	default:
		return "failed"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Report is everything the dashboards render for one selected fragrance.
type Report struct {
	Item   string
	Status Status

	Summary Summary
	Series  []SeriesPoint
	Slope   float64

	DepletionYear int
	DepletionErr  error // ErrDivisionByZero when no growth was recorded

	StartFill []float64 // one entry per bottle, all full
	Fill      []float64 // remaining volume per bottle

	Err error // set when Status is StatusFailed
}

// Analyze runs the whole calculation for item. It never returns an error:
// failures are reported through Status and Err.
func Analyze(records []model.UsageRecord, item string, cm ConsumptionModel, now time.Time) Report {
	r := Report{Item: item}

	sum, tracked, err := Summarize(records, item, cm)
	if err != nil {
		r.Status, r.Err = StatusFailed, err
		return r
	}
	if !tracked {
		r.Status = StatusNotTracked
		return r
	}

	points, slope, err := BuildYearlySeries(sum.Periods, now)
	if err != nil {
		r.Status, r.Err = StatusFailed, err
		return r
	}

	r.Status = StatusTracked
	r.Summary = sum
	r.Series = points
	r.Slope = slope
	r.DepletionYear, r.DepletionErr = ProjectDepletionYear(sum.RemainingVolume, slope, cm, now)
	r.StartFill = BottleFillFractions(sum.StartingVolume, sum.ContainerVolume, sum.Backups)
	r.Fill = BottleFillFractions(sum.RemainingVolume, sum.ContainerVolume, sum.Backups)
	return r
}

// HasDepletionYear reports whether DepletionYear holds a usable projection.
func (r Report) HasDepletionYear() bool {
	return r.Status == StatusTracked && r.DepletionErr == nil
}

// Export is the serialisable form of a Report.
type Export struct {
	Item          string        `json:"item" yaml:"item"`
	Status        Status        `json:"status" yaml:"status"`
	TotalWears    float64       `json:"total_wears,omitempty" yaml:"total_wears,omitempty"`
	Rank          int           `json:"rank,omitempty" yaml:"rank,omitempty"`
	RankedItems   int           `json:"ranked_items,omitempty" yaml:"ranked_items,omitempty"`
	BottleML      float64       `json:"bottle_ml,omitempty" yaml:"bottle_ml,omitempty"`
	Backups       *int          `json:"backups,omitempty" yaml:"backups,omitempty"`
	StartingML    *float64      `json:"starting_ml,omitempty" yaml:"starting_ml,omitempty"`
	RemainingML   *float64      `json:"remaining_ml,omitempty" yaml:"remaining_ml,omitempty"`
	WearsPerYear  *float64      `json:"wears_per_year,omitempty" yaml:"wears_per_year,omitempty"`
	RunOutYear    *int          `json:"run_out_year,omitempty" yaml:"run_out_year,omitempty"`
	BottleFill    []float64     `json:"bottle_fill,omitempty" yaml:"bottle_fill,omitempty"`
	Series        []ExportPoint `json:"series,omitempty" yaml:"series,omitempty"`
	Error         string        `json:"error,omitempty" yaml:"error,omitempty"`
	ProjectionErr string        `json:"projection_error,omitempty" yaml:"projection_error,omitempty"`
}

// ExportPoint is one serialised series point.
type ExportPoint struct {
	Year       int     `json:"year" yaml:"year"`
	X          float64 `json:"x" yaml:"x"`
	Wears      float64 `json:"wears" yaml:"wears"`
	Cumulative float64 `json:"cumulative" yaml:"cumulative"`
	Synthetic  bool    `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// Export flattens the report for JSON or YAML output.
func (r Report) Export() Export {
	e := Export{Item: r.Item, Status: r.Status}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	if r.Status != StatusTracked {
		return e
	}

	s := r.Summary
	e.TotalWears = s.TotalUses
	e.Rank = s.Rank
	e.RankedItems = s.RankedItems
	e.BottleML = s.ContainerVolume
	// Zero volumes stay in the output; only untracked reports omit them.
	e.Backups = &s.Backups
	e.StartingML = &s.StartingVolume
	e.RemainingML = &s.RemainingVolume
	e.WearsPerYear = &r.Slope
	e.BottleFill = r.Fill
	if r.HasDepletionYear() {
		y := r.DepletionYear
		e.RunOutYear = &y
	} else if r.DepletionErr != nil {
		e.ProjectionErr = r.DepletionErr.Error()
	}
	for _, p := range r.Series {
		e.Series = append(e.Series, ExportPoint{
			Year:       p.Year,
			X:          p.X,
			Wears:      p.Uses,
			Cumulative: p.Cumulative,
			Synthetic:  p.Synthetic,
		})
	}
	return e
}

// IsDataIntegrity reports whether err is a workbook or record integrity failure.
func IsDataIntegrity(err error) bool {
	var die *model.DataIntegrityError
	return errors.As(err, &die)
}
