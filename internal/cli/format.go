// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Placeholder is printed wherever a value is missing or cannot be computed.
const Placeholder = "NA"

// FormatWears formats a wear count, dropping the fraction when it is whole.
func FormatWears(n float64) string {
	if n == math.Trunc(n) {
		return FormatNumber(int64(n))
	}
	return strconv.FormatFloat(n, 'f', 1, 64)
}

// FormatVolume formats millilitres rounded to the nearest whole mL.
// e.g., 95.6 -> "96 mL", -3.2 -> "-3 mL"
func FormatVolume(ml float64) string {
	if math.IsNaN(ml) || math.IsInf(ml, 0) {
		return Placeholder
	}
	return FormatNumber(int64(math.Round(ml))) + " mL"
}

// FormatPrice formats a USD amount, e.g. 1150 -> "$1,150.00".
func FormatPrice(d decimal.Decimal) string {
	if d.IsZero() {
		return Placeholder
	}
	return money.New(d.Shift(2).Round(0).IntPart(), money.USD).Display()
}

// FormatPricePerML formats a retail $/mL figure.
func FormatPricePerML(d decimal.Decimal) string {
	if d.IsZero() {
		return Placeholder
	}
	return FormatPrice(d) + "/mL"
}

// FormatRank formats a competition rank, e.g. "#2 of 45".
func FormatRank(rank, total int) string {
	if rank <= 0 {
		return Placeholder
	}
	return fmt.Sprintf("#%d of %d", rank, total)
}

// FormatRating formats an optional integer score.
func FormatRating(v *int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.Itoa(*v)
}

// FormatScent formats the scent rating, which may carry a quarter-point bonus.
func FormatScent(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatYear formats a projected year; ok false yields the placeholder.
func FormatYear(year int, ok bool) string {
	if !ok {
		return Placeholder
	}
	return strconv.Itoa(year)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}
