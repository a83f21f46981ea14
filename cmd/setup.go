package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Choose the workbook, theme and spray count",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	form, apply := tui.NewSetupForm(config.WorkbookPath(cfg, flagWorkbook), cfg)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing saved.")
			return nil
		}
		return err
	}

	cfg, err := apply()
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `fragdash setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
