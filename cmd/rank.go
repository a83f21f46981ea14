package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/pipeline"
)

var (
	flagRankLimit     int
	flagRankHighlight string
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Fragrances ranked by all-time wears",
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().IntVarP(&flagRankLimit, "limit", "l", 20, "Number of fragrances to list (0 for all)")
	rankCmd.Flags().StringVar(&flagRankHighlight, "highlight", "", "Fragrance to highlight; listed even outside the limit")
	rootCmd.AddCommand(rankCmd)
}

func runRank(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}
	catalog, records, err := scope(result.Dataset)
	if err != nil {
		return err
	}

	items, err := pipeline.AggregateItems(records, catalog)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("\n  Wears not tracked yet.")
		return nil
	}

	highlight := ""
	if flagRankHighlight != "" {
		f, err := pipeline.Lookup(catalog, flagRankHighlight)
		if err != nil {
			return err
		}
		highlight = f.Name
	}

	limit := flagRankLimit
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	labelW := 0
	for _, it := range items {
		labelW = max(labelW, len([]rune(it.Item)))
	}
	labelW = min(labelW, 32)

	fmt.Println()
	fmt.Println(cli.RenderTitle("MOST WORN"))
	fmt.Println()

	rows := make([][]string, 0, limit+2)
	bars := make([]string, 0, limit+1)
	for i, it := range items {
		if i >= limit && it.Item != highlight {
			continue
		}
		if i >= limit {
			rows = append(rows, []string{"---"})
		}
		rows = append(rows, []string{strconv.Itoa(it.Rank), it.Item, it.House, cli.FormatWears(it.Uses)})
		bars = append(bars, cli.RenderHorizontalBar(truncate(it.Item, labelW), labelW, it.Uses, items[0].Uses, 40, it.Item == highlight))
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"#", "Fragrance", "House", "Wears"},
		Rows:    rows,
	}))
	fmt.Println()
	for _, b := range bars {
		fmt.Println(b)
	}
	fmt.Println()
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
