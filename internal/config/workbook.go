package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/clubsmell/fragdash/internal/wears"
)

// Sheet naming used by the collection workbook.
const (
	DefaultCatalogSheet = "Insane Persons Sheet"
	DefaultWearsPrefix  = "Wears for"
)

// WorkbookEnv overrides the configured workbook path.
const WorkbookEnv = "FRAGDASH_WORKBOOK"

// WorkbookPath returns the workbook to read: flag, then env var, then config.
// Relative paths are made absolute so the cache keys stay stable.
func WorkbookPath(cfg Config, flag string) string {
	p := flag
	if p == "" {
		p = os.Getenv(WorkbookEnv)
	}
	if p == "" {
		p = cfg.General.Workbook
	}
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// ConsumptionModel returns the wear-to-volume model, falling back to the defaults
// for unset or invalid values.
func (c Config) ConsumptionModel() wears.ConsumptionModel {
	m := wears.ConsumptionModel{
		SpraysPerUnit: c.Consumption.SpraysPerML,
		SpraysPerUse:  c.Consumption.SpraysPerWear,
	}
	if m.SpraysPerUnit <= 0 || m.SpraysPerUse <= 0 {
		return wears.DefaultConsumption
	}
	return m
}

// BottleRange returns the min and max volume the bottle glyph is scaled against.
func (c Config) BottleRange() (float64, float64) {
	lo, hi := c.Bottle.MinVolume, c.Bottle.MaxVolume
	if hi <= lo || lo < 0 {
		return wears.DefaultMinVolume, wears.DefaultMaxVolume
	}
	return lo, hi
}

// PollInterval returns how often the web service checks the workbook for changes.
func (c Config) PollInterval() time.Duration {
	if c.Server.PollIntervalSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.PollIntervalSec) * time.Second
}
