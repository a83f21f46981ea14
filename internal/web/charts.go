package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/clubsmell/fragdash/internal/metrics"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/wears"
)

var errNoChartData = errors.New("nothing to chart")

const (
	chartWidth    = 720
	chartHeight   = 360
	rankingLimit  = 25
	bottleBarMax  = 90
	bottleSpacing = 24
)

var (
	colorLine   = drawing.ColorFromHex("4111a4")
	colorBar    = drawing.ColorFromHex("8a5cf5")
	colorGold   = drawing.ColorFromHex("ffd700")
	colorEmpty  = drawing.ColorFromHex("e6e0f0")
	colorStroke = drawing.ColorFromHex("2e2440")
)

// RenderCumulative draws the cumulative-wear line of a tracked report.
func RenderCumulative(w io.Writer, r wears.Report) error {
	if r.Status != wears.StatusTracked || len(r.Series) == 0 {
		return errNoChartData
	}

	xs := make([]float64, len(r.Series))
	ys := make([]float64, len(r.Series))
	ticks := make([]chart.Tick, 0, len(r.Series))
	maxY := 0.0
	for i, p := range r.Series {
		xs[i], ys[i] = p.X, p.Cumulative
		maxY = math.Max(maxY, p.Cumulative)
		ticks = append(ticks, chart.Tick{Value: p.X, Label: strconv.Itoa(p.Year)})
	}
	if maxY <= 0 {
		maxY = 1
	}
	// go-chart needs two distinct x values; a lone period starts from zero a year earlier.
	if len(xs) == 1 {
		xs = []float64{xs[0] - 1, xs[0]}
		ys = []float64{0, ys[0]}
	}

	ch := chart.Chart{
		Title:      "Cumulative wears: " + r.Item,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Year",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: xs[0] - 0.25, Max: xs[len(xs)-1] + 0.25},
		},
		YAxis: chart.YAxis{
			Name:  "Wears",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(maxY * 1.1)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    r.Item,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: colorLine,
					StrokeWidth: 3,
					DotColor:    colorLine,
					DotWidth:    5,
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

// RenderRanking draws the most-worn fragrances as bars, highlighting selected
// in gold. The selected fragrance is always shown even outside the top bars.
func RenderRanking(w io.Writer, items []model.ItemTotal, selected string) error {
	if len(items) == 0 {
		return errNoChartData
	}

	shown := items
	if len(shown) > rankingLimit {
		shown = append([]model.ItemTotal(nil), items[:rankingLimit]...)
		for _, it := range items[rankingLimit:] {
			if it.Item == selected {
				shown = append(shown, it)
				break
			}
		}
	}

	bars := make([]chart.Value, 0, len(shown))
	peak := 0.0
	for _, it := range shown {
		fill := colorBar
		if it.Item == selected {
			fill = colorGold
		}
		peak = math.Max(peak, it.Uses)
		bars = append(bars, chart.Value{
			Label: it.Item,
			Value: it.Uses,
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}

	barWidth := max(6, (chartWidth-80)/len(bars)-6)
	bc := chart.BarChart{
		Title:      "All-time wears",
		Width:      chartWidth,
		Height:     chartHeight + 120,
		BarWidth:   barWidth,
		BarSpacing: 6,
		Background: chart.Style{Padding: chart.Box{Top: 40, Bottom: 120}},
		XAxis:      chart.Style{TextRotationDegrees: 90},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(math.Max(peak, 1) * 1.1)},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

// RenderBottles draws one stacked bar per bottle: gold juice below, empty
// glass above. Bar width follows the bottle size so decants look small.
func RenderBottles(w io.Writer, fills []float64, scale float64) error {
	if len(fills) == 0 {
		return errNoChartData
	}

	width := max(8, int(bottleBarMax*scale))
	bars := make([]chart.StackedBar, 0, len(fills))
	for i, f := range fills {
		f = math.Min(math.Max(f, 0), 1)
		bars = append(bars, chart.StackedBar{
			Name:  fmt.Sprintf("Bottle %d", i+1),
			Width: width,
			Values: []chart.Value{
				{Value: 1 - f, Style: chart.Style{FillColor: colorEmpty, StrokeColor: colorStroke, StrokeWidth: 1}},
				{Value: f, Style: chart.Style{FillColor: colorGold, StrokeColor: colorStroke, StrokeWidth: 1}},
			},
		})
	}

	sbc := chart.StackedBarChart{
		Title:      "Bottles",
		Width:      max(240, len(fills)*(width+bottleSpacing)+80),
		Height:     chartHeight,
		BarSpacing: bottleSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Bars:       bars,
	}
	return sbc.Render(chart.PNG, w)
}

// handleChart renders /charts/{chart}.png for the fragrance named in the
// query. bottle accepts state=start for the unworn collection.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chart")

	ds, err := s.src.Dataset()
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	q := r.URL.Query()

	var buf bytes.Buffer
	switch name {
	case "ranking":
		var items []model.ItemTotal
		items, err = pipeline.AggregateItems(ds.Records, ds.Catalog)
		if err == nil {
			err = RenderRanking(&buf, items, q.Get("fragrance"))
		}
	case "cumulative", "bottle":
		var f model.Fragrance
		f, err = pipeline.Lookup(ds.Catalog, q.Get("fragrance"))
		if err != nil {
			break
		}
		report := wears.Analyze(ds.Records, f.Name, s.opts.Consumption, s.opts.Now())
		if name == "cumulative" {
			err = RenderCumulative(&buf, report)
			break
		}
		fills := report.Fill
		if q.Get("state") == "start" {
			fills = report.StartFill
		}
		scale := wears.BottleScale(report.Summary.ContainerVolume, s.opts.MinVolume, s.opts.MaxVolume)
		err = RenderBottles(&buf, fills, scale)
	default:
		err = fmt.Errorf("%w: unknown chart %q", errBadRequest, name)
		name = "unknown"
	}

	if err != nil {
		metrics.ChartRendersTotal.WithLabelValues(name, "error").Inc()
		s.handleError(w, r, err)
		return
	}
	metrics.ChartRendersTotal.WithLabelValues(name, "ok").Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}
