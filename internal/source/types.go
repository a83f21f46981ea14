package source

import "github.com/clubsmell/fragdash/internal/model"

// Column headers, in normalized form (see normalizeHeader).
const (
	colFragrance   = "fragrance"
	colHouse       = "house"
	colPerfumer    = "perfumer"
	colPrice       = "$"
	colVolume      = "ml"
	colNotes       = "my notes"
	colScore       = "score out of 100"
	colPerformance = "performance (1-10)"
	colScent       = "scent (1-10)*"
	colWears       = "wears"
	colBackups     = "backups"
)

// CatalogResult holds the fragrances parsed from the catalog sheet.
type CatalogResult struct {
	Sheet      string
	Fragrances []model.Fragrance
	Issues     []error // rows that were skipped, one DataIntegrityError each
	Err        error   // sheet-level failure, e.g. a missing required column
}

// SheetResult holds the wear records parsed from one period sheet.
type SheetResult struct {
	Sheet   string
	Records []model.UsageRecord
	Issues  []error
	Err     error
}
