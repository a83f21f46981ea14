// Package source reads the fragrance collection workbook.
package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook is an open collection spreadsheet.
type Workbook struct {
	Path string
	f    *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return &Workbook{Path: path, f: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Sheets returns every sheet name in workbook order.
func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

// PeriodSheets returns the names of the sheets containing prefix, sorted
// ascending so that periods come out in chronological order.
func (w *Workbook) PeriodSheets(prefix string) []string {
	return FilterPeriodSheets(w.Sheets(), prefix)
}

// FilterPeriodSheets selects and sorts period sheet names.
func FilterPeriodSheets(sheets []string, prefix string) []string {
	var out []string
	for _, s := range sheets {
		if strings.Contains(s, prefix) {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Rows returns the raw cell values of a sheet. Numbers come back unformatted
// so currency and percentage styles don't leak into parsing.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// Catalog reads and parses the catalog sheet.
func (w *Workbook) Catalog(sheet string) CatalogResult {
	rows, err := w.Rows(sheet)
	if err != nil {
		return CatalogResult{Sheet: sheet, Err: err}
	}
	return ParseCatalog(sheet, rows)
}

// Wears reads every period sheet and concatenates their records in sheet order.
func (w *Workbook) Wears(prefix string) []SheetResult {
	sheets := w.PeriodSheets(prefix)
	results := make([]SheetResult, 0, len(sheets))
	for _, s := range sheets {
		rows, err := w.Rows(s)
		if err != nil {
			results = append(results, SheetResult{Sheet: s, Err: err})
			continue
		}
		results = append(results, ParseWears(s, rows))
	}
	return results
}
