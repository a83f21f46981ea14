package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/pipeline"
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "Wear totals per period sheet",
	RunE:  runPeriods,
}

func init() {
	rootCmd.AddCommand(periodsCmd)
}

func runPeriods(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}
	_, records, err := scope(result.Dataset)
	if err != nil {
		return err
	}

	periods := pipeline.AggregatePeriods(records)
	if len(periods) == 0 {
		fmt.Println("\n  Wears not tracked yet.")
		return nil
	}

	rows := make([][]string, 0, len(periods)+2)
	values := make([]float64, 0, len(periods))
	var total float64
	for _, p := range periods {
		year := cli.Placeholder
		if p.Year > 0 {
			year = strconv.Itoa(p.Year)
		}
		rows = append(rows, []string{p.Period, year, cli.FormatNumber(int64(p.Fragrances)), cli.FormatWears(p.Uses)})
		values = append(values, p.Uses)
		total += p.Uses
	}
	rows = append(rows, []string{"---"}, []string{"Total", "", "", cli.FormatWears(total)})

	fmt.Println()
	fmt.Println(cli.RenderTitle("WEARS PER PERIOD"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Year", "Worn", "Wears"},
		Rows:    rows,
	}))
	fmt.Printf("\n  Trend  %s\n\n", cli.RenderSparkline(values))
	return nil
}
