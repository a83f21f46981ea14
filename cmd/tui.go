package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/tui"
	"github.com/clubsmell/fragdash/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor so background styling survives terminals that
	// under-report their capabilities.
	lipgloss.SetColorProfile(termenv.TrueColor)

	path := config.WorkbookPath(cfg, flagWorkbook)
	app := tui.NewApp(tui.Options{
		Workbook:  path,
		Load:      pipeline.OptionsFromConfig(cfg),
		UseCache:  !flagNoCache,
		Config:    cfg,
		NeedSetup: !config.Exists() || path == "",
		Selection: baseSelection(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
