// Package config loads and saves the fragdash TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all fragdash configuration.
type Config struct {
	General     GeneralConfig     `toml:"general"`
	Consumption ConsumptionConfig `toml:"consumption"`
	Bottle      BottleConfig      `toml:"bottle"`
	Appearance  AppearanceConfig  `toml:"appearance"`
	Server      ServerConfig      `toml:"server"`
}

// GeneralConfig locates the workbook and its sheets.
type GeneralConfig struct {
	Workbook     string `toml:"workbook,omitempty"`
	CatalogSheet string `toml:"catalog_sheet"`
	WearsPrefix  string `toml:"wears_prefix"`
}

// ConsumptionConfig overrides the sprays-to-volume assumption.
type ConsumptionConfig struct {
	SpraysPerML   float64 `toml:"sprays_per_ml"`
	SpraysPerWear float64 `toml:"sprays_per_wear"`
}

// BottleConfig is the volume range the bottle glyph is scaled against.
type BottleConfig struct {
	MinVolume float64 `toml:"min_volume"`
	MaxVolume float64 `toml:"max_volume"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds settings for `fragdash serve`.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	Env             string `toml:"env"`
	LogLevel        string `toml:"log_level"`
	PollIntervalSec int    `toml:"poll_interval_sec"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			CatalogSheet: DefaultCatalogSheet,
			WearsPrefix:  DefaultWearsPrefix,
		},
		Consumption: ConsumptionConfig{
			SpraysPerML:   12,
			SpraysPerWear: 4,
		},
		Bottle: BottleConfig{
			MinVolume: 30,
			MaxVolume: 600,
		},
		Appearance: AppearanceConfig{
			Theme: "amethyst",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8642",
			Env:             "dev",
			LogLevel:        "info",
			PollIntervalSec: 10,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fragdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fragdash")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the XDG-compliant cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "fragdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "fragdash")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()

	return cfg, nil
}

// fillDefaults restores settings a partial file left empty.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.General.CatalogSheet == "" {
		c.General.CatalogSheet = def.General.CatalogSheet
	}
	if c.General.WearsPrefix == "" {
		c.General.WearsPrefix = def.General.WearsPrefix
	}
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = def.Appearance.Theme
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.PollIntervalSec <= 0 {
		c.Server.PollIntervalSec = def.Server.PollIntervalSec
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
