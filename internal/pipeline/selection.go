package pipeline

import (
	"fmt"
	"strings"

	"github.com/clubsmell/fragdash/internal/model"
)

// Mode is the first step of the fragrance cascade filter.
type Mode int

const (
	ModeHouse Mode = iota
	ModePerfumer
	ModeAll
)

// Modes lists the cascade modes in display order.
var Modes = []Mode{ModeHouse, ModePerfumer, ModeAll}

func (m Mode) String() string {
	switch m {
	case ModeHouse:
		return "House"
	case ModePerfumer:
		return "Perfumer"
	default:
		return "All Fragrances"
	}
}

// ParseMode accepts "house", "perfumer" or "all" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "house", "":
		return ModeHouse, nil
	case "perfumer":
		return ModePerfumer, nil
	case "all", "all fragrances":
		return ModeAll, nil
	}
	return ModeAll, fmt.Errorf("unknown filter mode %q (want house, perfumer or all)", s)
}

// Selection is the caller's current filter state. It is passed explicitly into
// every computation; nothing is remembered between calls.
type Selection struct {
	Mode      Mode
	Value     string // house or perfumer name, ignored for ModeAll
	Fragrance string
}

// Houses returns the distinct houses in catalog order.
func Houses(catalog []model.Fragrance) []string {
	return unique(catalog, func(f model.Fragrance) string { return f.House })
}

// Perfumers returns the distinct non-empty perfumers in catalog order.
func Perfumers(catalog []model.Fragrance) []string {
	return unique(catalog, func(f model.Fragrance) string { return f.Perfumer })
}

// Values returns the second-level options for a mode.
func Values(catalog []model.Fragrance, m Mode) []string {
	switch m {
	case ModeHouse:
		return Houses(catalog)
	case ModePerfumer:
		return Perfumers(catalog)
	default:
		return nil
	}
}

// FilterByHouse returns the fragrances of one house.
func FilterByHouse(catalog []model.Fragrance, house string) []model.Fragrance {
	var out []model.Fragrance
	for _, f := range catalog {
		if f.House == house {
			out = append(out, f)
		}
	}
	return out
}

// FilterByPerfumer returns the fragrances composed by one perfumer.
func FilterByPerfumer(catalog []model.Fragrance, perfumer string) []model.Fragrance {
	var out []model.Fragrance
	for _, f := range catalog {
		if f.Perfumer == perfumer {
			out = append(out, f)
		}
	}
	return out
}

// FilterByQuery returns fragrances whose name, house or perfumer contains q,
// ignoring case.
func FilterByQuery(catalog []model.Fragrance, q string) []model.Fragrance {
	q = strings.TrimSpace(q)
	if q == "" {
		return catalog
	}
	var out []model.Fragrance
	for _, f := range catalog {
		if containsIgnoreCase(f.Name, q) || containsIgnoreCase(f.House, q) || containsIgnoreCase(f.Perfumer, q) {
			out = append(out, f)
		}
	}
	return out
}

// FragranceOptions returns the fragrance names selectable under sel's mode and value.
func FragranceOptions(catalog []model.Fragrance, sel Selection) []string {
	var subset []model.Fragrance
	switch sel.Mode {
	case ModeHouse:
		subset = FilterByHouse(catalog, sel.Value)
	case ModePerfumer:
		subset = FilterByPerfumer(catalog, sel.Value)
	default:
		subset = catalog
	}
	return unique(subset, func(f model.Fragrance) string { return f.Name })
}

// Resolve fills in a partial or stale selection the way a dropdown would:
// an unknown value or fragrance falls back to the first available option.
// It returns model.ErrNotFound only when nothing at all can be selected.
func Resolve(catalog []model.Fragrance, sel Selection) (Selection, model.Fragrance, error) {
	if sel.Mode != ModeAll {
		values := Values(catalog, sel.Mode)
		if len(values) == 0 {
			return sel, model.Fragrance{}, model.ErrNotFound
		}
		if !contains(values, sel.Value) {
			sel.Value = values[0]
		}
	} else {
		sel.Value = ""
	}

	options := FragranceOptions(catalog, sel)
	if len(options) == 0 {
		return sel, model.Fragrance{}, model.ErrNotFound
	}
	if !contains(options, sel.Fragrance) {
		sel.Fragrance = options[0]
	}

	f, err := Lookup(catalog, sel.Fragrance)
	return sel, f, err
}

// Lookup finds a fragrance by exact name, then by case-insensitive name.
func Lookup(catalog []model.Fragrance, name string) (model.Fragrance, error) {
	for _, f := range catalog {
		if f.Name == name {
			return f, nil
		}
	}
	for _, f := range catalog {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return model.Fragrance{}, fmt.Errorf("%q: %w", name, model.ErrNotFound)
}

func unique(catalog []model.Fragrance, key func(model.Fragrance) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range catalog {
		k := key(f)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
