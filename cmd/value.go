package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/pipeline"
)

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Retail value worn and left, cheapest wear first",
	RunE:  runValue,
}

func init() {
	rootCmd.AddCommand(valueCmd)
}

func runValue(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}
	catalog, records, err := scope(result.Dataset)
	if err != nil {
		return err
	}

	cm := cfg.ConsumptionModel()
	totals, rows, err := pipeline.AggregateValue(catalog, records, cm)
	if err != nil {
		return fmt.Errorf("pricing wears: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("\n  No worn fragrances with a retail price.")
		return nil
	}

	table := make([][]string, 0, len(rows)+2)
	for _, r := range rows {
		table = append(table, []string{
			r.Item,
			cli.FormatPricePerML(r.PricePerML),
			cli.FormatPrice(r.CostPerWear),
			cli.FormatWears(r.Uses),
			cli.FormatPrice(r.WornValue),
			cli.FormatPrice(r.RemainingValue),
		})
	}
	table = append(table, []string{"---"}, []string{
		fmt.Sprintf("%d priced", totals.Priced), "", "", "",
		cli.FormatPrice(totals.WornValue),
		cli.FormatPrice(totals.RemainingValue),
	})

	fmt.Println()
	fmt.Println(cli.RenderTitle("WEAR VALUE"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Fragrance", "Retail", "Per wear", "Wears", "Worn", "Left"},
		Rows:    table,
	}))
	fmt.Printf("\n  Assumes %g sprays per mL and %g sprays per wear.\n\n",
		cm.SpraysPerUnit, cm.SpraysPerUse)
	return nil
}
