package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clubsmell/fragdash/internal/wears"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.CatalogSheet != DefaultCatalogSheet {
		t.Fatalf("CatalogSheet = %q, want %q", cfg.General.CatalogSheet, DefaultCatalogSheet)
	}
	if cfg.ConsumptionModel() != wears.DefaultConsumption {
		t.Fatalf("ConsumptionModel = %+v, want defaults", cfg.ConsumptionModel())
	}
}

func TestSaveLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	body := "[general]\nworkbook = \"/tmp/collection.xlsx\"\n\n[consumption]\nsprays_per_ml = 10\nsprays_per_wear = 5\n"
	if err := os.MkdirAll(filepath.Join(dir, "fragdash"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fragdash", "config.toml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Workbook != "/tmp/collection.xlsx" {
		t.Errorf("Workbook = %q", cfg.General.Workbook)
	}
	if cfg.General.WearsPrefix != DefaultWearsPrefix {
		t.Errorf("WearsPrefix = %q, want default", cfg.General.WearsPrefix)
	}
	if got := cfg.ConsumptionModel().UsesPerUnit(); got != 2 {
		t.Errorf("UsesPerUnit = %v, want 2", got)
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.PollInterval())
	}
}

func TestSave_RoundTripsTheme(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Appearance.Theme = "rosewood"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Appearance.Theme != "rosewood" {
		t.Fatalf("Theme = %q, want rosewood", got.Appearance.Theme)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "fragdash"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(), []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestWorkbookPath_Precedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.Workbook = "/data/config.xlsx"

	t.Setenv(WorkbookEnv, "")
	if got := WorkbookPath(cfg, ""); got != "/data/config.xlsx" {
		t.Errorf("config only: %q", got)
	}

	t.Setenv(WorkbookEnv, "/data/env.xlsx")
	if got := WorkbookPath(cfg, ""); got != "/data/env.xlsx" {
		t.Errorf("env override: %q", got)
	}
	if got := WorkbookPath(cfg, "/data/flag.xlsx"); got != "/data/flag.xlsx" {
		t.Errorf("flag override: %q", got)
	}

	t.Setenv(WorkbookEnv, "")
	if got := WorkbookPath(DefaultConfig(), ""); got != "" {
		t.Errorf("nothing configured: %q, want empty", got)
	}
}

func TestBottleRange_Fallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bottle = BottleConfig{MinVolume: 100, MaxVolume: 50}
	lo, hi := cfg.BottleRange()
	if lo != wears.DefaultMinVolume || hi != wears.DefaultMaxVolume {
		t.Fatalf("BottleRange = %v,%v, want defaults", lo, hi)
	}
}
