package source

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/clubsmell/fragdash/internal/model"
)

// header maps normalized column names to their index.
type header map[string]int

func parseHeader(row []string) header {
	h := make(header, len(row))
	for i, cell := range row {
		name := normalizeHeader(cell)
		if name == "" {
			continue
		}
		if _, dup := h[name]; !dup {
			h[name] = i
		}
	}
	return h
}

// normalizeHeader lowercases a header cell and collapses its whitespace.
func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// cell returns the trimmed value of column name in row, or "" when absent.
func (h header) cell(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h header) require(sheet string, names ...string) error {
	for _, n := range names {
		if _, ok := h[n]; !ok {
			return &model.DataIntegrityError{
				Sheet:  sheet,
				Row:    1,
				Column: n,
				Reason: "required column is missing",
			}
		}
	}
	return nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumber accepts plain numbers and the "$1,234.50" style users type.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func badCell(sheet string, row int, col, val, reason string) error {
	return &model.DataIntegrityError{Sheet: sheet, Row: row, Column: col, Value: val, Reason: reason}
}

// ParseCatalog converts the catalog sheet into fragrances. Rows without a
// fragrance name or house are dropped silently; malformed numeric cells are
// reported and left unset.
func ParseCatalog(sheet string, rows [][]string) CatalogResult {
	res := CatalogResult{Sheet: sheet}
	if len(rows) == 0 {
		res.Err = badCell(sheet, 1, colFragrance, "", "sheet is empty")
		return res
	}

	h := parseHeader(rows[0])
	if err := h.require(sheet, colFragrance, colHouse); err != nil {
		res.Err = err
		return res
	}

	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		f := model.Fragrance{
			Name:     h.cell(row, colFragrance),
			House:    h.cell(row, colHouse),
			Perfumer: h.cell(row, colPerfumer),
			Notes:    h.cell(row, colNotes),
		}
		if f.Name == "" || f.House == "" {
			continue
		}

		if raw := h.cell(row, colPrice); raw != "" {
			if v, ok := parseNumber(raw); ok && v >= 0 {
				f.Price = decimal.NewFromFloat(v)
			} else {
				res.Issues = append(res.Issues, badCell(sheet, line, colPrice, raw, "price is not a number"))
			}
		}
		if raw := h.cell(row, colVolume); raw != "" {
			if v, ok := parseNumber(raw); ok && v > 0 {
				f.Volume = v
			} else {
				res.Issues = append(res.Issues, badCell(sheet, line, colVolume, raw, "volume must be a positive number"))
			}
		}
		f.PricePerML = model.PricePerML(f.Price, f.Volume)

		if raw := h.cell(row, colScore); raw != "" {
			if v, ok := parseNumber(raw); ok {
				n := int(v)
				f.Score = &n
			} else {
				res.Issues = append(res.Issues, badCell(sheet, line, colScore, raw, "score is not a number"))
			}
		}
		if raw := h.cell(row, colPerformance); raw != "" {
			if v, ok := parseNumber(raw); ok {
				n := int(v)
				f.Performance = &n
			} else {
				res.Issues = append(res.Issues, badCell(sheet, line, colPerformance, raw, "performance is not a number"))
			}
		}
		if raw := h.cell(row, colScent); raw != "" {
			if v, ok := parseNumber(raw); ok {
				s := math.Round(v*1e4) / 1e4
				f.Scent = &s
			} else {
				res.Issues = append(res.Issues, badCell(sheet, line, colScent, raw, "scent is not a number"))
			}
		}

		res.Fragrances = append(res.Fragrances, f)
	}
	return res
}

// ParseWears converts one period sheet into usage records. Blank rows and
// rows with zero or empty wears are skipped. A row with wears but an unusable
// volume or backup count is reported and skipped.
func ParseWears(sheet string, rows [][]string) SheetResult {
	res := SheetResult{Sheet: sheet}
	if len(rows) == 0 {
		return res
	}

	h := parseHeader(rows[0])
	if err := h.require(sheet, colFragrance, colWears, colVolume); err != nil {
		res.Err = err
		return res
	}

	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}

		rawWears := h.cell(row, colWears)
		if rawWears == "" {
			continue
		}
		uses, ok := parseNumber(rawWears)
		if !ok || uses < 0 {
			res.Issues = append(res.Issues, badCell(sheet, line, colWears, rawWears, "wears must be a non-negative number"))
			continue
		}
		if uses == 0 {
			continue
		}

		name := h.cell(row, colFragrance)
		if name == "" {
			res.Issues = append(res.Issues, badCell(sheet, line, colFragrance, "", "wears recorded without a fragrance name"))
			continue
		}

		rawVol := h.cell(row, colVolume)
		vol, ok := parseNumber(rawVol)
		if !ok || vol <= 0 {
			res.Issues = append(res.Issues, badCell(sheet, line, colVolume, rawVol, "volume must be a positive number"))
			continue
		}

		var backups int
		if raw := h.cell(row, colBackups); raw != "" {
			b, ok := parseNumber(raw)
			if !ok || b < 0 || b != math.Trunc(b) {
				res.Issues = append(res.Issues, badCell(sheet, line, colBackups, raw, "backups must be a whole number"))
				continue
			}
			backups = int(b)
		}

		res.Records = append(res.Records, model.UsageRecord{
			Item:            name,
			Period:          sheet,
			Uses:            uses,
			ContainerVolume: vol,
			Backups:         backups,
			Row:             line,
		})
	}
	return res
}
