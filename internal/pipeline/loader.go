package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/source"
)

// Options selects the sheets to read from a workbook.
type Options struct {
	CatalogSheet string
	WearsPrefix  string
}

// OptionsFromConfig returns the load options stored in cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		CatalogSheet: cfg.General.CatalogSheet,
		WearsPrefix:  cfg.General.WearsPrefix,
	}
}

func (o Options) withDefaults() Options {
	if o.CatalogSheet == "" {
		o.CatalogSheet = config.DefaultCatalogSheet
	}
	if o.WearsPrefix == "" {
		o.WearsPrefix = config.DefaultWearsPrefix
	}
	return o
}

// Dataset is one immutable load of a workbook. Nothing in it is modified after
// Load returns; a changed workbook produces a new Dataset.
type Dataset struct {
	Path     string
	Catalog  []model.Fragrance
	Records  []model.UsageRecord
	Periods  []string // period sheet names, ascending
	Issues   []string // skipped rows and unreadable sheets
	LoadedAt time.Time
}

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Dataset
	TotalSheets  int
	ParsedSheets int
	SheetErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of sheets processed so far, total is the total count.
type ProgressFunc func(current, total int)

type sheetJob struct {
	name    string
	rows    [][]string
	catalog bool
}

type sheetOutput struct {
	catalog source.CatalogResult
	wears   source.SheetResult
}

// Load reads the catalog and every period sheet of the workbook at path.
// Sheets are parsed with a bounded worker pool; records keep sheet order.
func Load(path string, opts Options, progressFn ProgressFunc) (*LoadResult, error) {
	opts = opts.withDefaults()

	wb, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()

	periods := wb.PeriodSheets(opts.WearsPrefix)
	result := &LoadResult{
		Dataset: Dataset{
			Path:     path,
			Periods:  periods,
			LoadedAt: time.Now(),
		},
		TotalSheets: len(periods) + 1,
	}

	// Cell access on one excelize file is serialized; parsing is not.
	jobs := make([]sheetJob, 0, len(periods)+1)
	catRows, err := wb.Rows(opts.CatalogSheet)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	jobs = append(jobs, sheetJob{name: opts.CatalogSheet, rows: catRows, catalog: true})
	for _, p := range periods {
		rows, err := wb.Rows(p)
		if err != nil {
			result.SheetErrors++
			result.Issues = append(result.Issues, err.Error())
			continue
		}
		jobs = append(jobs, sheetJob{name: p, rows: rows})
	}

	outputs := parseSheets(jobs, func(n int) {
		if progressFn != nil {
			progressFn(n+result.SheetErrors, result.TotalSheets)
		}
	})

	for i, out := range outputs {
		if jobs[i].catalog {
			if out.catalog.Err != nil {
				return nil, fmt.Errorf("loading catalog: %w", out.catalog.Err)
			}
			result.ParsedSheets++
			result.Catalog = out.catalog.Fragrances
			result.Issues = appendIssues(result.Issues, out.catalog.Issues)
			continue
		}
		if out.wears.Err != nil {
			result.SheetErrors++
			result.Issues = append(result.Issues, out.wears.Err.Error())
			continue
		}
		result.ParsedSheets++
		result.Records = append(result.Records, out.wears.Records...)
		result.Issues = appendIssues(result.Issues, out.wears.Issues)
	}

	return result, nil
}

// parseSheets parses every job in parallel and returns outputs in job order.
func parseSheets(jobs []sheetJob, done func(n int)) []sheetOutput {
	outputs := make([]sheetOutput, len(jobs))
	if len(jobs) == 0 {
		return outputs
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	work := make(chan int, len(jobs))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range jobs {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				j := jobs[idx]
				if j.catalog {
					outputs[idx].catalog = source.ParseCatalog(j.name, j.rows)
				} else {
					outputs[idx].wears = source.ParseWears(j.name, j.rows)
				}
				done(int(processed.Add(1)))
			}
		}()
	}

	wg.Wait()
	return outputs
}

func appendIssues(dst []string, issues []error) []string {
	for _, err := range issues {
		dst = append(dst, err.Error())
	}
	return dst
}
