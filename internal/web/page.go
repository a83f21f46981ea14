package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/clubsmell/fragdash/internal/cli"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/wears"
)

// Raw HTML in notes is dropped because goldmark's unsafe mode stays off.
var markdown = goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps()))

type option struct {
	Value    string
	Label    string
	Selected bool
}

type card struct {
	Label string
	Value string
}

type pageData struct {
	Modes      []option
	Values     []option
	Fragrances []option
	ValueLabel string
	ShowValues bool

	Empty     bool
	Fragrance model.Fragrance
	Details   []card
	Notes     template.HTML

	Status   string
	Message  string
	Stats    []card
	Overview []card

	Periods  int
	Issues   int
	LoadedAt string
}

func modeKey(m pipeline.Mode) string {
	switch m {
	case pipeline.ModeHouse:
		return "house"
	case pipeline.ModePerfumer:
		return "perfumer"
	default:
		return "all"
	}
}

func options(values []string, selected string) []option {
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{Value: v, Label: v, Selected: v == selected}
	}
	return out
}

func renderNotes(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String()) //nolint:gosec // goldmark escapes raw HTML
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ds, err := s.src.Dataset()
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	sel, err := selectionFromQuery(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	data := pageData{
		Periods:  len(ds.Periods),
		Issues:   len(ds.Issues),
		LoadedAt: ds.LoadedAt.Format("2006-01-02 15:04:05"),
	}
	stats := pipeline.Overview(ds.Catalog, ds.Records)
	data.Overview = []card{
		{"Fragrances", strconv.Itoa(stats.Fragrances)},
		{"Houses", strconv.Itoa(stats.Houses)},
		{"Worn", strconv.Itoa(stats.Tracked)},
		{"Total wears", cli.FormatWears(stats.TotalUses)},
		{"Retail value", cli.FormatPrice(stats.TotalRetail)},
	}

	sel, f, err := pipeline.Resolve(ds.Catalog, sel)
	switch {
	case errors.Is(err, model.ErrNotFound):
		data.Empty = true
	case err != nil:
		s.handleError(w, r, err)
		return
	}

	for _, m := range pipeline.Modes {
		data.Modes = append(data.Modes, option{Value: modeKey(m), Label: m.String(), Selected: m == sel.Mode})
	}
	if sel.Mode != pipeline.ModeAll {
		data.ShowValues = true
		data.ValueLabel = sel.Mode.String()
		data.Values = options(pipeline.Values(ds.Catalog, sel.Mode), sel.Value)
	}

	if !data.Empty {
		data.Fragrances = options(pipeline.FragranceOptions(ds.Catalog, sel), sel.Fragrance)
		data.Fragrance = f
		data.Notes = renderNotes(f.Notes)
		data.Details = []card{
			{"House", f.House},
			{"Perfumer", orPlaceholder(f.Perfumer)},
			{"Retail", cli.FormatPrice(f.Price)},
			{"Size", cli.FormatVolume(f.Volume)},
			{"Price per mL", cli.FormatPricePerML(f.PricePerML)},
			{"Score", cli.FormatRating(f.Score)},
			{"Performance", cli.FormatRating(f.Performance)},
			{"Scent", cli.FormatScent(f.Scent)},
		}
		s.fillReport(&data, wears.Analyze(ds.Records, f.Name, s.opts.Consumption, s.opts.Now()))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) fillReport(data *pageData, rep wears.Report) {
	data.Status = rep.Status.String()
	switch rep.Status {
	case wears.StatusNotTracked:
		data.Message = "Wears not tracked yet."
		return
	case wears.StatusFailed:
		data.Message = "Wear data could not be read: " + rep.Err.Error()
		return
	}

	sum := rep.Summary
	data.Stats = []card{
		{"Total wears", cli.FormatWears(sum.TotalUses)},
		{"Rank", cli.FormatRank(sum.Rank, sum.RankedItems)},
		{"Bottles", strconv.Itoa(sum.Backups + 1) + " × " + cli.FormatVolume(sum.ContainerVolume)},
		{"Remaining", cli.FormatVolume(sum.RemainingVolume)},
		{"Wears per year", cli.FormatWears(rep.Slope)},
		{"Runs out in", cli.FormatYear(rep.DepletionYear, rep.HasDepletionYear())},
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return cli.Placeholder
	}
	return s
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>fragdash{{if .Fragrance.Name}} · {{.Fragrance.Name}}{{end}}</title>
<style>
body{font-family:system-ui,sans-serif;background:#17121f;color:#f4f0fa;margin:0;display:flex}
aside{width:260px;padding:1.5rem;background:#211a2c;min-height:100vh}
main{flex:1;padding:1.5rem 2rem}
label{display:block;margin-top:1rem;color:#8a82a0;font-size:.85rem}
select{width:100%;padding:.4rem;background:#2e2440;color:#f4f0fa;border:1px solid #4111a4}
.cards{display:flex;flex-wrap:wrap;gap:.75rem;margin:1rem 0}
.card{background:#211a2c;border:1px solid #2e2440;border-radius:6px;padding:.6rem .9rem;min-width:120px}
.card .label{color:#8a82a0;font-size:.75rem}
.card .value{font-size:1.15rem;color:#ffd700}
.notes{max-width:70ch;line-height:1.5}
.muted{color:#8a82a0}
img{max-width:100%;background:#fff;border-radius:6px;margin:.5rem 0}
</style>
</head>
<body>
<aside>
<h2>fragdash</h2>
<form method="get" action="/">
<label for="mode">Filter by</label>
<select id="mode" name="mode" onchange="this.form.submit()">
{{range .Modes}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{if .ShowValues}}<label for="value">{{.ValueLabel}}</label>
<select id="value" name="value" onchange="this.form.submit()">
{{range .Values}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{end}}{{if .Fragrances}}<label for="fragrance">Fragrance</label>
<select id="fragrance" name="fragrance" onchange="this.form.submit()">
{{range .Fragrances}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select>
{{end}}<noscript><button type="submit">Show</button></noscript>
</form>
<div class="cards">
{{range .Overview}}<div class="card"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</div>
<p class="muted">{{.Periods}} periods · loaded {{.LoadedAt}}{{if .Issues}} · {{.Issues}} rows skipped{{end}}</p>
</aside>
<main>
{{if .Empty}}<p class="muted">No fragrances in the catalog.</p>
{{else}}<h1>{{.Fragrance.Name}}</h1>
<div class="cards">
{{range .Details}}<div class="card"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</div>
{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
<h2>Wears</h2>
{{if .Message}}<p class="muted">{{.Message}}</p>
{{else}}<div class="cards">
{{range .Stats}}<div class="card"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{end}}</div>
<img src="/charts/cumulative.png?fragrance={{.Fragrance.Name}}" alt="Cumulative wears">
<img src="/charts/bottle.png?fragrance={{.Fragrance.Name}}" alt="Remaining bottles">
{{end}}<img src="/charts/ranking.png?fragrance={{.Fragrance.Name}}" alt="Wear ranking">
{{end}}</main>
</body>
</html>
`))
