// Package testutil builds collection workbooks for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a fixture workbook. The first row is the header.
type Sheet struct {
	Name string
	Rows [][]any
}

// CatalogHeader is the catalog sheet header as users type it.
var CatalogHeader = []any{"Fragrance", "House", "Perfumer", "$", "mL", "My notes", "Score out of 100", "Performance (1-10)", "Scent (1-10)*"}

// WearsHeader is the header of every period sheet.
var WearsHeader = []any{"Fragrance", "Wears", "mL", "Backups"}

// WriteWorkbook saves sheets to a new .xlsx file in a temp dir and returns its path.
func WriteWorkbook(t testing.TB, sheets ...Sheet) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.xlsx")
	SaveWorkbook(t, path, sheets...)
	return path
}

// SaveWorkbook writes sheets to path, replacing any existing file.
func SaveWorkbook(t testing.TB, path string, sheets ...Sheet) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("new sheet %q: %v", s.Name, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatal(err)
			}
			row := row
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				t.Fatalf("write %s!%s: %v", s.Name, cell, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

// Collection returns a small but complete collection workbook layout.
func Collection() []Sheet {
	return []Sheet{
		{Name: "Insane Persons Sheet", Rows: [][]any{
			CatalogHeader,
			{"Aventus", "Creed", "Olivier Creed", 495, 100, "Smoky **pineapple**.", 92, 8, 9.25},
			{"Bleu de Chanel", "Chanel", "Jacques Polge", 150, 100, "Safe blue.", 80, 7, 8},
			{"Cuir de Russie", "Chanel", "Ernest Beaux", 340, 200, "", nil, nil, nil},
			{"Dune", "Dior", "Jean-Louis Sieuzac", 120, 50, "Beach dunes.", 75, 6, 7.5},
			{"", "Nameless", "", 10, 10, "", nil, nil, nil},
		}},
		{Name: "Wears for 2023", Rows: [][]any{
			WearsHeader,
			{"Aventus", 5, 50, 1},
			{"Bleu de Chanel", 8, 100, 0},
			{"Cuir de Russie", 0, 200, 0},
		}},
		{Name: "Wears for 2021-2022", Rows: [][]any{
			WearsHeader,
			{"Aventus", 7, 50, 1},
			{"Bleu de Chanel", 12, 100, 0},
		}},
		{Name: "Notes", Rows: [][]any{{"scratch"}}},
	}
}
