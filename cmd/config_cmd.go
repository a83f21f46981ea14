package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var flagClearCache bool

func init() {
	configCmd.Flags().BoolVar(&flagClearCache, "clear-cache", false, "drop the cached parse of the workbook")
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	path := config.WorkbookPath(cfg, flagWorkbook)
	if flagClearCache {
		if path == "" {
			return errNoWorkbook
		}
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer func() { _ = cache.Close() }()
		if err := pipeline.ForgetCache(cache, path, pipeline.OptionsFromConfig(cfg)); err != nil {
			return err
		}
		fmt.Printf("  Cleared cached parse of %s\n", path)
		return nil
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if path != "" {
		fmt.Printf("    Workbook:      %s\n", path)
	} else {
		fmt.Println("    Workbook:      not configured")
	}
	fmt.Printf("    Catalog sheet: %s\n", cfg.General.CatalogSheet)
	fmt.Printf("    Wears prefix:  %s\n", cfg.General.WearsPrefix)
	fmt.Printf("    Cache:         %s\n", pipeline.CachePath())
	if path != "" {
		fmt.Printf("    Cached:        %s\n", cachedSummary(cfg, path))
	}
	fmt.Println()

	cm := cfg.ConsumptionModel()
	fmt.Println("  [Consumption]")
	fmt.Printf("    Sprays per mL:   %g\n", cm.SpraysPerUnit)
	fmt.Printf("    Sprays per wear: %g\n", cm.SpraysPerUse)
	fmt.Printf("    Wears per mL:    %.2f\n", cm.UsesPerUnit())
	fmt.Println()

	minVol, maxVol := cfg.BottleRange()
	fmt.Println("  [Bottle]")
	fmt.Printf("    Glyph range: %g-%g mL\n", minVol, maxVol)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Environment:   %s\n", cfg.Server.Env)
	fmt.Printf("    Log level:     %s\n", cfg.Server.LogLevel)
	fmt.Printf("    Poll interval: %s\n", cfg.PollInterval())
	fmt.Println()

	fmt.Println("  Run `fragdash setup` to reconfigure.")
	return nil
}

func cachedSummary(cfg config.Config, path string) string {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return "unavailable"
	}
	defer func() { _ = cache.Close() }()

	frags, records, err := pipeline.CacheCounts(cache, path, pipeline.OptionsFromConfig(cfg))
	switch {
	case err != nil:
		return "unavailable"
	case frags == 0:
		return "nothing yet"
	}
	return fmt.Sprintf("%d fragrances, %d wear records", frags, records)
}
