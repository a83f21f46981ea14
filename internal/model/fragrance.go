// Package model defines domain types for fragdash catalog entries and wear records.
package model

import "github.com/shopspring/decimal"

// Fragrance is one row of the catalog sheet.
type Fragrance struct {
	Name     string
	House    string
	Perfumer string

	Price      decimal.Decimal // retail price, USD
	Volume     float64         // retail bottle size in mL
	PricePerML decimal.Decimal

	Notes       string // markdown review text
	Score       *int     // 0-100
	Performance *int     // 1-10
	Scent       *float64 // 1-10, may carry a fractional bonus
}

// UsageRecord holds the wears of one fragrance during one period sheet.
type UsageRecord struct {
	Item            string
	Period          string // sheet name, e.g. "Wears for 2021-2022"
	Uses            float64
	ContainerVolume float64 // mL of the bottle in use
	Backups         int
	Row             int // 1-based row in the source sheet, 0 when unknown
}

// ItemTotal is the all-time wear total for one fragrance.
type ItemTotal struct {
	Item  string
	House string
	Uses  float64
	Rank  int
}

// PeriodStats holds collection-wide totals for one period sheet.
type PeriodStats struct {
	Period     string
	Year       int
	Fragrances int
	Uses       float64
}

// HouseStats holds wear totals grouped by house.
type HouseStats struct {
	House      string
	Fragrances int
	Tracked    int
	Uses       float64
}

// CollectionStats is the top-level summary across the whole workbook.
type CollectionStats struct {
	Fragrances int
	Houses     int
	Perfumers  int
	Tracked    int
	TotalUses  float64
	Periods    int

	TotalRetail     decimal.Decimal
	MeanPricePerML  decimal.Decimal
	MeanScore       float64
	ScoredFragrance int
}

// PricePerML is the retail price per mL, zero when either input is missing.
func PricePerML(price decimal.Decimal, volume float64) decimal.Decimal {
	if price.IsZero() || volume <= 0 {
		return decimal.Zero
	}
	return price.Div(decimal.NewFromFloat(volume)).Round(4)
}
