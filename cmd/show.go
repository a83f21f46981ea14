package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/wears"
)

var flagShowOutput string

var showCmd = &cobra.Command{
	Use:   "show [fragrance]",
	Short: "Details, wear statistics and run-out year for one fragrance",
	Long: "Show one fragrance. Without a name, the first fragrance of the\n" +
		"--house / --perfumer selection is shown.",
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&flagShowOutput, "output", "o", "text", "Output format: text, json or yaml")
	rootCmd.AddCommand(showCmd)
}

// showOutput is the machine-readable form of `show`.
type showOutput struct {
	Name        string       `json:"name" yaml:"name"`
	House       string       `json:"house" yaml:"house"`
	Perfumer    string       `json:"perfumer,omitempty" yaml:"perfumer,omitempty"`
	PriceUSD    string       `json:"price_usd,omitempty" yaml:"price_usd,omitempty"`
	VolumeML    float64      `json:"volume_ml,omitempty" yaml:"volume_ml,omitempty"`
	PricePerML  string       `json:"price_per_ml,omitempty" yaml:"price_per_ml,omitempty"`
	Score       *int         `json:"score,omitempty" yaml:"score,omitempty"`
	Performance *int         `json:"performance,omitempty" yaml:"performance,omitempty"`
	Scent       *float64     `json:"scent,omitempty" yaml:"scent,omitempty"`
	Notes       string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	Wears       wears.Export `json:"wears" yaml:"wears"`
}

func newShowOutput(f model.Fragrance, r wears.Report) showOutput {
	out := showOutput{
		Name:        f.Name,
		House:       f.House,
		Perfumer:    f.Perfumer,
		VolumeML:    f.Volume,
		Score:       f.Score,
		Performance: f.Performance,
		Scent:       f.Scent,
		Notes:       f.Notes,
		Wears:       r.Export(),
	}
	if !f.Price.IsZero() {
		out.PriceUSD = f.Price.StringFixed(2)
	}
	if !f.PricePerML.IsZero() {
		out.PricePerML = f.PricePerML.StringFixed(2)
	}
	return out
}

func runShow(_ *cobra.Command, args []string) error {
	format := strings.ToLower(flagShowOutput)
	if format != "text" && format != "json" && format != "yaml" {
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", flagShowOutput)
	}

	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}

	var f model.Fragrance
	if len(args) == 1 {
		f, err = pipeline.Lookup(result.Catalog, args[0])
	} else {
		_, f, err = pipeline.Resolve(result.Catalog, baseSelection())
	}
	if err != nil {
		if errors.Is(err, model.ErrNotFound) && len(args) == 0 {
			return errors.New("no fragrances in the catalog")
		}
		return err
	}

	report := wears.Analyze(result.Records, f.Name, cfg.ConsumptionModel(), time.Now())
	return writeShow(os.Stdout, format, f, report, cfg)
}

func writeShow(w io.Writer, format string, f model.Fragrance, r wears.Report, cfg config.Config) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newShowOutput(f, r))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newShowOutput(f, r)); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle(strings.ToUpper(f.Name)))
	fmt.Fprintln(w)

	perfumer := f.Perfumer
	if perfumer == "" {
		perfumer = cli.Placeholder
	}
	fmt.Fprint(w, cli.RenderKV([][2]string{
		{"House", f.House},
		{"Perfumer", perfumer},
		{"Retail", cli.FormatPrice(f.Price) + " · " + cli.FormatVolume(f.Volume)},
		{"Price per mL", cli.FormatPricePerML(f.PricePerML)},
		{"Score", cli.FormatRating(f.Score) + " / 100"},
		{"Performance", cli.FormatRating(f.Performance) + " / 10"},
		{"Scent", cli.FormatScent(f.Scent) + " / 10"},
	}))

	if notes := renderNotes(f.Notes); notes != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, notes)
	}
	fmt.Fprintln(w)

	switch r.Status {
	case wears.StatusNotTracked:
		fmt.Fprintln(w, "  Wears not tracked yet.")
		return nil
	case wears.StatusFailed:
		return fmt.Errorf("computing wear statistics for %s: %w", f.Name, r.Err)
	}

	s := r.Summary
	fmt.Fprint(w, cli.RenderKV([][2]string{
		{"Total wears", cli.FormatWears(s.TotalUses)},
		{"Rank", cli.FormatRank(s.Rank, s.RankedItems)},
		{"Bottles", fmt.Sprintf("%s × %d", cli.FormatVolume(s.ContainerVolume), s.Backups+1)},
		{"Starting volume", cli.FormatVolume(s.StartingVolume)},
		{"Remaining", cli.FormatVolume(s.RemainingVolume)},
		{"Wears per year", fmt.Sprintf("%.1f", r.Slope)},
		{"Runs out", cli.FormatYear(r.DepletionYear, r.HasDepletionYear())},
	}))
	fmt.Fprintln(w)

	values := make([]float64, len(r.Series))
	for i, p := range r.Series {
		values[i] = p.Cumulative
	}
	first, last := r.Series[0].Year, r.Series[len(r.Series)-1].Year
	fmt.Fprintf(w, "  Cumulative %d-%d  %s\n", first, last, cli.RenderSparkline(values))
	fmt.Fprintf(w, "  Bottles             %s\n", cli.RenderBottles(r.Fill, 10))

	minVol, maxVol := cfg.BottleRange()
	if scale := wears.BottleScale(s.ContainerVolume, minVol, maxVol); scale < 1 {
		fmt.Fprintf(w, "  Bottle size         %.0f%% of the largest\n", scale*100)
	}
	fmt.Fprintln(w)
	return nil
}

// renderNotes renders markdown notes for the terminal, falling back to the
// raw text.
func renderNotes(md string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(76))
	if err != nil {
		return "  " + md
	}
	out, err := r.Render(md)
	if err != nil {
		return "  " + md
	}
	return strings.TrimRight(out, "\n")
}
