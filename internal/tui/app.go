// Package tui provides the interactive Bubble Tea dashboard for fragdash.
package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/store"
	"github.com/clubsmell/fragdash/internal/tui/components"
	"github.com/clubsmell/fragdash/internal/tui/theme"
	"github.com/clubsmell/fragdash/internal/wears"
)

// DataLoadedMsg is sent when the workbook finishes loading.
type DataLoadedMsg struct {
	Dataset  *pipeline.Dataset
	LoadTime time.Duration
	CacheHit bool
	Err      error
}

// ProgressMsg reports sheet parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// ReloadMsg is sent when a manual reload completes.
type ReloadMsg DataLoadedMsg

// Options configures a new App.
type Options struct {
	Workbook  string
	Load      pipeline.Options
	UseCache  bool
	Config    config.Config
	NeedSetup bool

	// Selection is the initial cascade state, e.g. from --house.
	Selection pipeline.Selection

	// Now is the clock used for the series and projection. Defaults to time.Now.
	Now func() time.Time
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	ds       *pipeline.Dataset
	loaded   bool
	loadErr  error
	loadTime time.Duration
	cacheHit bool
	ranking  []model.ItemTotal
	rankErr  error
	houses   []model.HouseStats

	// Computation inputs
	consumption wears.ConsumptionModel
	minVolume   float64
	maxVolume   float64
	now         func() time.Time

	// Current selection and its results
	sel       pipeline.Selection
	fragrance model.Fragrance
	report    wears.Report
	selErr    error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	focus     focusArea
	reloading bool
	notice    string

	// Fragrance search
	searching   bool
	searchInput textinput.Model
	query       string

	notes *notesRenderer

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals setupValues
	needSetup bool
	cfg       config.Config

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg

	workbook string
	loadOpts pipeline.Options
	useCache bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 180
	sidebarWidth     = 30
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	minVol, maxVol := opts.Config.BottleRange()

	return App{
		consumption: opts.Config.ConsumptionModel(),
		minVolume:   minVol,
		maxVolume:   maxVol,
		now:         now,
		sel:         opts.Selection,
		notes:       newNotesRenderer(),
		needSetup:   opts.NeedSetup,
		cfg:         opts.Config,
		spinner:     sp,
		loadSub:     make(chan tea.Msg, 1),
		workbook:    opts.Workbook,
		loadOpts:    opts.Load,
		useCache:    opts.UseCache,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.workbook, a.loadOpts, a.useCache, a.loadSub),
		a.spinner.Tick,
	)
}

// setDataset installs a freshly loaded dataset and recomputes everything
// derived from it.
func (a *App) setDataset(ds *pipeline.Dataset) {
	a.ds = ds
	a.ranking, a.rankErr = pipeline.AggregateItems(ds.Records, ds.Catalog)
	a.houses = pipeline.AggregateHouses(ds.Records, ds.Catalog)
	a.recompute()
}

// recompute resolves the selection against the catalog and reruns the wear
// calculator for the chosen fragrance.
func (a *App) recompute() {
	if a.ds == nil {
		return
	}
	sel, f, err := pipeline.Resolve(a.searchCatalog(), a.sel)
	if err != nil && a.query != "" {
		// Nothing matches the query; fall back to the full catalog.
		sel, f, err = pipeline.Resolve(a.ds.Catalog, a.sel)
	}
	a.sel = sel
	a.selErr = err
	if err != nil {
		a.fragrance = model.Fragrance{}
		a.report = wears.Report{}
		return
	}
	a.fragrance = f
	a.report = wears.Analyze(a.ds.Records, f.Name, a.consumption, a.now())
}

// searchCatalog is the catalog narrowed by the active search query.
func (a App) searchCatalog() []model.Fragrance {
	if a.ds == nil {
		return nil
	}
	return pipeline.FilterByQuery(a.ds.Catalog, a.query)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.searching {
			return a.updateSearch(msg)
		}
		return a.updateKeys(msg)

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.cacheHit = msg.CacheHit
		a.loadErr = msg.Err
		if msg.Dataset != nil {
			a.setDataset(msg.Dataset)
		}
		if a.needSetup {
			a.setupForm = newSetupForm(a.workbook, a.cfg, &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ReloadMsg:
		a.reloading = false
		a.loadTime = msg.LoadTime
		a.cacheHit = msg.CacheHit
		if msg.Err != nil {
			// Keep showing the previous dataset.
			a.notice = "reload failed: " + msg.Err.Error()
			return a, nil
		}
		a.loadErr = nil
		a.notice = ""
		a.setDataset(msg.Dataset)
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.reloading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks) to the form or search input.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.searching {
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "tab":
		a.cycleFocus(1)
	case "shift+tab":
		a.cycleFocus(-1)
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g", "home":
		a.jumpCursor(false)
	case "G", "end":
		a.jumpCursor(true)
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	case "/":
		a.searching = true
		a.searchInput = newSearchInput(a.query)
		a.searchInput.Focus()
		return a, textinput.Blink
	case "esc":
		if a.query != "" {
			a.query = ""
			a.recompute()
		}
	case "t":
		a.cycleTheme()
	case "R", "ctrl+r":
		if !a.reloading && a.workbook != "" {
			a.reloading = true
			return a, tea.Batch(reloadDataCmd(a.workbook, a.loadOpts, a.useCache), a.spinner.Tick)
		}
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		cfg, err := a.setupVals.apply(a.cfg)
		if err == nil {
			err = config.Save(cfg)
		}
		if err != nil {
			a.notice = "could not save config: " + err.Error()
		}
		a.cfg = cfg
		a.consumption = cfg.ConsumptionModel()
		theme.SetActive(cfg.Appearance.Theme)
		a.notes.reset()
		a.needSetup = false
		a.setupForm = nil

		if path := cfg.General.Workbook; path != "" && path != a.workbook {
			a.workbook = path
			a.reloading = true
			return a, tea.Batch(reloadDataCmd(a.workbook, a.loadOpts, a.useCache), a.spinner.Tick)
		}
		a.recompute()
		return a, nil

	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a *App) cycleTheme() {
	for i, th := range theme.All {
		if th.Name == theme.Active.Name {
			theme.Active = theme.All[(i+1)%len(theme.All)]
			break
		}
	}
	a.notes.reset()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	if a.ds == nil {
		return a.viewLoadError()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fragdash needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) overlayCard(body string) string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("❖ fragdash"))
	b.WriteString(subtitleStyle.Render(" · " + filepath.Base(a.workbook)))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading sheets\n\n"))
		b.WriteString(components.LoadingBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Opening workbook..."))
	}

	return a.overlayCard(b.String())
}

func (a App) viewLoadError() string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	reason := "no workbook configured"
	if a.loadErr != nil {
		reason = a.loadErr.Error()
	}
	body := errStyle.Render("Could not load the workbook") + "\n\n" +
		dimStyle.Render(reason) + "\n\n" +
		dimStyle.Render("Run `fragdash setup` or pass --workbook. Press q to quit.")
	return a.overlayCard(body)
}

func (a App) viewHelp() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Highlight).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(b *strings.Builder, title string, binds [][2]string) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, bind := range binds {
			fmt.Fprintf(b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("❖ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section(&b, "Navigation", [][2]string{
		{"d w r", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"tab", "Next filter list"},
		{"j k", "Move in filter list"},
		{"g G", "First / Last entry"},
	})
	b.WriteString("\n")
	section(&b, "Actions", [][2]string{
		{"/", "Search fragrances"},
		{"Esc", "Clear search"},
		{"t", "Next theme"},
		{"R", "Reload workbook"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return a.overlayCard(b.String())
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	crumbs := pillStyle.Render(" ") + accentStyle.Render(a.sel.Mode.String())
	if a.sel.Mode != pipeline.ModeAll && a.sel.Value != "" {
		crumbs += pillStyle.Render(" › ") + accentStyle.Render(a.sel.Value)
	}
	if a.sel.Fragrance != "" {
		crumbs += pillStyle.Render(" › ") + accentStyle.Render(a.sel.Fragrance)
	}
	if a.query != "" {
		crumbs += pillStyle.Render("  search: ") + accentStyle.Render(a.query)
	}
	crumbRow := lipgloss.NewStyle().Background(t.Surface).Width(w).Render(crumbs)
	header := components.RenderTabBar(a.activeTab, w) + "\n" + crumbRow

	statusBar := components.RenderStatusBar(w, a.statusHints(), a.statusInfo())

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	sidebar := a.renderSidebar(contentH)
	mainW := cw - sidebarWidth - 1

	var content string
	switch {
	case a.selErr != nil:
		content = a.renderEmptyCatalog(mainW)
	default:
		switch a.activeTab {
		case 0:
			content = a.renderDetailsTab(mainW)
		case 1:
			content = a.renderWearsTab(mainW)
		case 2:
			content = a.renderRankingTab(mainW)
		}
	}
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, mainW, t.Background)

	gutter := lipgloss.NewStyle().Background(t.Background).Width(1).Height(contentH).Render("")
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, gutter, content)
	body = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, body,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderEmptyCatalog(w int) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	return components.ContentCard("Catalog", style.Render("No fragrances in the catalog."), w)
}

func (a App) statusHints() string {
	if a.searching {
		return "enter apply · esc cancel"
	}
	return "tab filter · j/k move · / search · ? help · q quit"
}

func (a App) statusInfo() string {
	if a.notice != "" {
		return a.notice
	}
	if a.reloading {
		return a.spinner.View() + " reloading"
	}
	parts := []string{filepath.Base(a.workbook)}
	if a.ds != nil && len(a.ds.Issues) > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped rows", len(a.ds.Issues)))
	}
	load := fmt.Sprintf("%.1fs", a.loadTime.Seconds())
	if a.cacheHit {
		load += " cached"
	}
	return strings.Join(append(parts, load), " · ")
}

// ─── Loading ────────────────────────────────────────────────────

// loadDataCmd starts the workbook load in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(path string, opts pipeline.Options, useCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			// Non-blocking send: a dropped update is replaced by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			sub <- DataLoadedMsg(loadDataset(path, opts, useCache, progressFn))
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// reloadDataCmd reloads the workbook without the progress UI.
func reloadDataCmd(path string, opts pipeline.Options, useCache bool) tea.Cmd {
	return func() tea.Msg {
		return ReloadMsg(loadDataset(path, opts, useCache, nil))
	}
}

func loadDataset(path string, opts pipeline.Options, useCache bool, progressFn pipeline.ProgressFunc) DataLoadedMsg {
	start := time.Now()
	if path == "" {
		return DataLoadedMsg{Err: errors.New("no workbook configured")}
	}

	if useCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			cr, loadErr := pipeline.LoadWithCache(path, opts, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return DataLoadedMsg{Dataset: &cr.Dataset, CacheHit: cr.CacheHit, LoadTime: time.Since(start)}
			}
		}
	}

	result, err := pipeline.Load(path, opts, progressFn)
	if err != nil {
		return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
	}
	return DataLoadedMsg{Dataset: &result.Dataset, LoadTime: time.Since(start)}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
