package metrics

import "github.com/prometheus/client_golang/prometheus"

// Workbook and chart metrics.
var (
	WorkbookLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fragdash",
			Name:      "workbook_loads_total",
			Help:      "Workbook loads by origin and outcome",
		},
		[]string{"origin", "status"}, // origin: "cache" / "parse"
	)

	WorkbookLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fragdash",
			Name:      "workbook_load_duration_seconds",
			Help:      "Time to load the workbook, cached or parsed",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	WorkbookIssues = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fragdash",
			Name:      "workbook_issues",
			Help:      "Rows skipped in the most recent workbook load",
		},
	)

	DatasetFragrances = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fragdash",
			Name:      "dataset_fragrances",
			Help:      "Fragrances in the loaded catalog",
		},
	)

	DatasetWears = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fragdash",
			Name:      "dataset_wears",
			Help:      "All-time wears in the loaded workbook",
		},
	)

	ChartRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fragdash",
			Name:      "chart_renders_total",
			Help:      "PNG chart renders by chart and outcome",
		},
		[]string{"chart", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		WorkbookLoadsTotal,
		WorkbookLoadDuration,
		WorkbookIssues,
		DatasetFragrances,
		DatasetWears,
		ChartRendersTotal,
	)
}
