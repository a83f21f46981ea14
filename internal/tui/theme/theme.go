// Package theme defines color themes for the fragdash terminal dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	SurfaceHover lipgloss.Color // Selected row in the sidebar
	Border       lipgloss.Color // Subtle borders
	BorderAccent lipgloss.Color // Focused pane border
	TextDim      lipgloss.Color // Hints, axis labels
	TextMuted    lipgloss.Color // Labels, metadata
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color // Bars, active tab
	AccentBright lipgloss.Color
	Highlight    lipgloss.Color // The selected fragrance in charts, juice in bottles
	Glass        lipgloss.Color // Empty part of a bottle
	Green        lipgloss.Color
	Orange       lipgloss.Color
	Red          lipgloss.Color
	GlamourStyle string // glamour standard style for rendered notes
}

// Active is the currently selected theme.
var Active = Amethyst

// Amethyst is the default theme: deep purple surfaces with gold highlights.
var Amethyst = Theme{
	Name:         "amethyst",
	Background:   lipgloss.Color("#17121F"),
	Surface:      lipgloss.Color("#211A2C"),
	SurfaceHover: lipgloss.Color("#2E2440"),
	Border:       lipgloss.Color("#3B2F52"),
	BorderAccent: lipgloss.Color("#8A5CF5"),
	TextDim:      lipgloss.Color("#5C5470"),
	TextMuted:    lipgloss.Color("#8A82A0"),
	TextPrimary:  lipgloss.Color("#F4F0FA"),
	Accent:       lipgloss.Color("#8A5CF5"),
	AccentBright: lipgloss.Color("#B08CFF"),
	Highlight:    lipgloss.Color("#FFD700"),
	Glass:        lipgloss.Color("#3B2F52"),
	Green:        lipgloss.Color("#7FB069"),
	Orange:       lipgloss.Color("#E08E45"),
	Red:          lipgloss.Color("#D1495B"),
	GlamourStyle: "dark",
}

// Rosewood is a warm red-brown theme with amber highlights.
var Rosewood = Theme{
	Name:         "rosewood",
	Background:   lipgloss.Color("#1A1212"),
	Surface:      lipgloss.Color("#261A1A"),
	SurfaceHover: lipgloss.Color("#3A2626"),
	Border:       lipgloss.Color("#4A3030"),
	BorderAccent: lipgloss.Color("#C8553D"),
	TextDim:      lipgloss.Color("#6B5050"),
	TextMuted:    lipgloss.Color("#A38A84"),
	TextPrimary:  lipgloss.Color("#F7EDE8"),
	Accent:       lipgloss.Color("#C8553D"),
	AccentBright: lipgloss.Color("#E4805F"),
	Highlight:    lipgloss.Color("#F2C14E"),
	Glass:        lipgloss.Color("#4A3030"),
	Green:        lipgloss.Color("#8CB369"),
	Orange:       lipgloss.Color("#F4A259"),
	Red:          lipgloss.Color("#BC4B51"),
	GlamourStyle: "dark",
}

// Vetiver is a muted green theme.
var Vetiver = Theme{
	Name:         "vetiver",
	Background:   lipgloss.Color("#121711"),
	Surface:      lipgloss.Color("#1B2219"),
	SurfaceHover: lipgloss.Color("#283225"),
	Border:       lipgloss.Color("#364331"),
	BorderAccent: lipgloss.Color("#879A39"),
	TextDim:      lipgloss.Color("#56604F"),
	TextMuted:    lipgloss.Color("#8C9882"),
	TextPrimary:  lipgloss.Color("#EEF2E6"),
	Accent:       lipgloss.Color("#879A39"),
	AccentBright: lipgloss.Color("#A3B859"),
	Highlight:    lipgloss.Color("#D0A215"),
	Glass:        lipgloss.Color("#364331"),
	Green:        lipgloss.Color("#A3B859"),
	Orange:       lipgloss.Color("#DA702C"),
	Red:          lipgloss.Color("#D14D41"),
	GlamourStyle: "dark",
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("5"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("5"),
	AccentBright: lipgloss.Color("13"),
	Highlight:    lipgloss.Color("11"),
	Glass:        lipgloss.Color("8"),
	Green:        lipgloss.Color("2"),
	Orange:       lipgloss.Color("3"),
	Red:          lipgloss.Color("1"),
	GlamourStyle: "notty",
}

// All available themes.
var All = []Theme{Amethyst, Rosewood, Vetiver, Terminal}

// ByName returns a theme by its name, defaulting to Amethyst.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Amethyst
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
