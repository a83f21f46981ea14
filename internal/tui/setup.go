package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/tui/theme"
)

// setupValues holds the first-run form fields, bound by pointer into huh.
type setupValues struct {
	workbook      string
	themeName     string
	spraysPerWear string
}

// NewSetupForm builds the setup form on its own, for `fragdash setup`.
func NewSetupForm(workbook string, cfg config.Config) (*huh.Form, func() (config.Config, error)) {
	vals := &setupValues{}
	form := newSetupForm(workbook, cfg, vals)
	return form, func() (config.Config, error) { return vals.apply(cfg) }
}

func newSetupForm(workbook string, cfg config.Config, vals *setupValues) *huh.Form {
	if workbook == "" {
		workbook = cfg.General.Workbook
	}
	vals.workbook = workbook
	vals.themeName = cfg.Appearance.Theme
	vals.spraysPerWear = strconv.FormatFloat(cfg.Consumption.SpraysPerWear, 'f', -1, 64)

	themeOpts := make([]huh.Option[string], len(theme.All))
	for i, th := range theme.All {
		themeOpts[i] = huh.NewOption(th.Name, th.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fragdash").
				Description("A few settings and you are in.\nRun `fragdash setup` any time to change them."),
			huh.NewInput().
				Title("Collection workbook").
				Description("Path to the .xlsx with the catalog and Wears for sheets.").
				Placeholder("~/Documents/fragrances.xlsx").
				Value(&vals.workbook).
				Validate(validateWorkbook),
			huh.NewInput().
				Title("Sprays per wear").
				Description(fmt.Sprintf("Volume is estimated at %g sprays per mL.", cfg.Consumption.SpraysPerML)).
				Value(&vals.spraysPerWear).
				Validate(validateSprays),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.themeName),
		),
	).WithTheme(huh.ThemeCharm())
}

// apply copies the form values onto cfg.
func (v setupValues) apply(cfg config.Config) (config.Config, error) {
	path, err := expandHome(strings.TrimSpace(v.workbook))
	if err != nil {
		return cfg, err
	}
	cfg.General.Workbook = path

	sprays, err := parseSprays(v.spraysPerWear)
	if err != nil {
		return cfg, err
	}
	cfg.Consumption.SpraysPerWear = sprays

	if v.themeName != "" {
		cfg.Appearance.Theme = v.themeName
	}
	return cfg, nil
}

func validateWorkbook(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("a workbook path is required")
	}
	path, err := expandHome(s)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot open %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func validateSprays(s string) error {
	_, err := parseSprays(s)
	return err
}

func parseSprays(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("sprays per wear must be a positive number, got %q", s)
	}
	return v, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding ~: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
