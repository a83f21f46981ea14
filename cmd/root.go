// Package cmd implements the fragdash CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/store"
)

var (
	flagWorkbook string
	flagNoCache  bool
	flagQuiet    bool
	flagHouse    string
	flagPerfumer string
)

var rootCmd = &cobra.Command{
	Use:          "fragdash",
	Short:        "Fragrance collection and wear dashboard",
	Long:         "Track how often you wear each fragrance, how much juice is left and when it runs out.",
	RunE:         runSummary,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagWorkbook, "workbook", "w", "", "Collection workbook (.xlsx); overrides "+config.WorkbookEnv+" and the config file")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the SQLite cache and reparse the workbook")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagHouse, "house", "", "Limit to one house")
	rootCmd.PersistentFlags().StringVar(&flagPerfumer, "perfumer", "", "Limit to one perfumer")
	rootCmd.MarkFlagsMutuallyExclusive("house", "perfumer")
}

// loadConfig returns the user config, or the defaults when the file is unreadable.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		if !flagQuiet {
			fmt.Fprintln(os.Stderr, cli.RenderWarning(err.Error()+"; using defaults"))
		}
		return config.DefaultConfig()
	}
	return cfg
}

var errNoWorkbook = errors.New("no workbook configured: pass --workbook, set " + config.WorkbookEnv + " or run `fragdash setup`")

func workbookPath(cfg config.Config) (string, error) {
	path := config.WorkbookPath(cfg, flagWorkbook)
	if path == "" {
		return "", errNoWorkbook
	}
	return path, nil
}

// loadData is the shared data loading path used by all commands.
// Uses the SQLite cache when the workbook is unchanged since the last run.
func loadData(cfg config.Config) (*pipeline.LoadResult, error) {
	path, err := workbookPath(cfg)
	if err != nil {
		return nil, err
	}
	opts := pipeline.OptionsFromConfig(cfg)

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Reading sheets [%d/%d]", current, total)
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(path, opts, cache, progressFn)
			if err == nil {
				if !flagQuiet {
					origin := "parsed"
					if cr.CacheHit {
						origin = "cached"
					}
					fmt.Fprintf(os.Stderr, "\r  Loaded %d fragrances, %d periods (%s)    \n",
						len(cr.Catalog), len(cr.Periods), origin)
				}
				warnIssues(cr.Issues)
				return &cr.LoadResult, nil
			}
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "\n  Cache error, falling back to full parse\n")
			}
		}
	}

	result, err := pipeline.Load(path, opts, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r  Parsed %d fragrances, %d periods    \n",
			len(result.Catalog), len(result.Periods))
	}
	warnIssues(result.Issues)
	return result, nil
}

func warnIssues(issues []string) {
	if flagQuiet || len(issues) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, cli.RenderWarning(fmt.Sprintf("%d rows skipped (first: %s)", len(issues), issues[0])))
}

// baseSelection turns --house / --perfumer into the first step of the cascade.
func baseSelection() pipeline.Selection {
	switch {
	case flagHouse != "":
		return pipeline.Selection{Mode: pipeline.ModeHouse, Value: flagHouse}
	case flagPerfumer != "":
		return pipeline.Selection{Mode: pipeline.ModePerfumer, Value: flagPerfumer}
	default:
		return pipeline.Selection{Mode: pipeline.ModeAll}
	}
}

// scope applies --house / --perfumer to the catalog and keeps only the wear
// records of the fragrances that remain. It returns an error when the filter
// matches nothing.
func scope(ds pipeline.Dataset) ([]model.Fragrance, []model.UsageRecord, error) {
	catalog := ds.Catalog
	switch {
	case flagHouse != "":
		catalog = pipeline.FilterByHouse(catalog, flagHouse)
	case flagPerfumer != "":
		catalog = pipeline.FilterByPerfumer(catalog, flagPerfumer)
	default:
		return catalog, ds.Records, nil
	}
	if len(catalog) == 0 {
		return nil, nil, fmt.Errorf("no fragrances match the filter: %w", model.ErrNotFound)
	}

	names := make(map[string]struct{}, len(catalog))
	for _, f := range catalog {
		names[f.Name] = struct{}{}
	}
	var records []model.UsageRecord
	for _, r := range ds.Records {
		if _, ok := names[r.Item]; ok {
			records = append(records, r)
		}
	}
	return catalog, records, nil
}
