package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/pipeline"
)

var housesCmd = &cobra.Command{
	Use:   "houses",
	Short: "Collection and wears grouped by house",
	RunE:  runHouses,
}

func init() {
	rootCmd.AddCommand(housesCmd)
}

func runHouses(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}
	catalog, records, err := scope(result.Dataset)
	if err != nil {
		return err
	}

	houses := pipeline.AggregateHouses(records, catalog)
	if len(houses) == 0 {
		fmt.Println("\n  No fragrances in the catalog.")
		return nil
	}

	rows := make([][]string, 0, len(houses))
	for _, h := range houses {
		rows = append(rows, []string{
			h.House,
			cli.FormatNumber(int64(h.Fragrances)),
			cli.FormatNumber(int64(h.Tracked)),
			cli.FormatWears(h.Uses),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("HOUSES"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"House", "Owned", "Worn", "Wears"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
