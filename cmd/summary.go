package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Collection summary with the most worn fragrances",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}

	if len(result.Catalog) == 0 {
		fmt.Println("\n  No fragrances in the catalog.")
		fmt.Printf("  Add rows to the %q sheet, then come back!\n", pipeline.OptionsFromConfig(cfg).CatalogSheet)
		return nil
	}

	catalog, records, err := scope(result.Dataset)
	if err != nil {
		return err
	}
	stats := pipeline.Overview(catalog, records)

	title := "FRAGRANCE COLLECTION"
	if flagHouse != "" {
		title += "  " + flagHouse
	} else if flagPerfumer != "" {
		title += "  " + flagPerfumer
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	meanScore := cli.Placeholder
	if stats.ScoredFragrance > 0 {
		meanScore = fmt.Sprintf("%.1f (%d scored)", stats.MeanScore, stats.ScoredFragrance)
	}

	rows := [][]string{
		{"Fragrances", cli.FormatNumber(int64(stats.Fragrances))},
		{"Houses", cli.FormatNumber(int64(stats.Houses))},
		{"Perfumers", cli.FormatNumber(int64(stats.Perfumers))},
		{"---"},
		{"Worn", fmt.Sprintf("%d of %d", stats.Tracked, stats.Fragrances)},
		{"Total wears", cli.FormatWears(stats.TotalUses)},
		{"Periods", cli.FormatNumber(int64(stats.Periods))},
		{"---"},
		{"Retail value", cli.FormatPrice(stats.TotalRetail)},
		{"Mean price", cli.FormatPricePerML(stats.MeanPricePerML)},
		{"Mean score", meanScore},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Collection", "Value"},
		Rows:    rows,
	}))

	items, err := pipeline.AggregateItems(records, catalog)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("\n  Wears not tracked yet.")
		return nil
	}

	top := items[:min(len(items), 5)]
	labelW := 0
	for _, it := range top {
		labelW = max(labelW, len([]rune(it.Item)))
	}
	fmt.Println()
	fmt.Println("  Most worn")
	for _, it := range top {
		fmt.Println(cli.RenderHorizontalBar(it.Item, labelW, it.Uses, top[0].Uses, 30, false))
	}
	fmt.Println()
	return nil
}
