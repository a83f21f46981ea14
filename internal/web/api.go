package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/clubsmell/fragdash/internal/daemon"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/wears"
)

type fragranceJSON struct {
	Name        string           `json:"name"`
	House       string           `json:"house"`
	Perfumer    string           `json:"perfumer,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	VolumeML    float64          `json:"volume_ml,omitempty"`
	PricePerML  *decimal.Decimal `json:"price_per_ml,omitempty"`
	Score       *int             `json:"score,omitempty"`
	Performance *int             `json:"performance,omitempty"`
	Scent       *float64         `json:"scent,omitempty"`
	Wears       float64          `json:"wears"`
	Rank        int              `json:"rank,omitempty"`
}

type fragranceDetail struct {
	Fragrance fragranceJSON `json:"fragrance"`
	Notes     string        `json:"notes,omitempty"`
	Report    wears.Export  `json:"report"`
}

type overviewJSON struct {
	Fragrances     int             `json:"fragrances"`
	Houses         int             `json:"houses"`
	Perfumers      int             `json:"perfumers"`
	Tracked        int             `json:"tracked"`
	Wears          float64         `json:"wears"`
	Periods        []string        `json:"periods"`
	TotalRetail    decimal.Decimal `json:"total_retail"`
	MeanPricePerML decimal.Decimal `json:"mean_price_per_ml"`
	MeanScore      float64         `json:"mean_score,omitempty"`
	Issues         []string        `json:"issues,omitempty"`
	LoadedAt       time.Time       `json:"loaded_at"`
}

func toFragranceJSON(f model.Fragrance, total model.ItemTotal) fragranceJSON {
	out := fragranceJSON{
		Name:        f.Name,
		House:       f.House,
		Perfumer:    f.Perfumer,
		VolumeML:    f.Volume,
		Score:       f.Score,
		Performance: f.Performance,
		Scent:       f.Scent,
		Wears:       total.Uses,
		Rank:        total.Rank,
	}
	if !f.Price.IsZero() {
		p := f.Price
		out.Price = &p
	}
	if !f.PricePerML.IsZero() {
		p := f.PricePerML
		out.PricePerML = &p
	}
	return out
}

func selectionFromQuery(r *http.Request) (pipeline.Selection, error) {
	q := r.URL.Query()
	mode, err := pipeline.ParseMode(q.Get("mode"))
	if err != nil {
		return pipeline.Selection{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return pipeline.Selection{
		Mode:      mode,
		Value:     q.Get("value"),
		Fragrance: q.Get("fragrance"),
	}, nil
}

func totalsByItem(ds *pipeline.Dataset) (map[string]model.ItemTotal, error) {
	items, err := pipeline.AggregateItems(ds.Records, ds.Catalog)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.ItemTotal, len(items))
	for _, it := range items {
		out[it.Item] = it
	}
	return out, nil
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ds, err := s.src.Dataset()
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	stats := pipeline.Overview(ds.Catalog, ds.Records)
	writeJSON(w, http.StatusOK, overviewJSON{
		Fragrances:     stats.Fragrances,
		Houses:         stats.Houses,
		Perfumers:      stats.Perfumers,
		Tracked:        stats.Tracked,
		Wears:          stats.TotalUses,
		Periods:        ds.Periods,
		TotalRetail:    stats.TotalRetail,
		MeanPricePerML: stats.MeanPricePerML,
		MeanScore:      stats.MeanScore,
		Issues:         ds.Issues,
		LoadedAt:       ds.LoadedAt,
	})
}

// handleFragrances lists the catalog, narrowed by mode/value and an optional
// free-text q.
func (s *Server) handleFragrances(w http.ResponseWriter, r *http.Request) {
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

	catalog := ds.Catalog
	if sel.Value != "" {
		switch sel.Mode {
		case pipeline.ModeHouse:
			catalog = pipeline.FilterByHouse(catalog, sel.Value)
		case pipeline.ModePerfumer:
			catalog = pipeline.FilterByPerfumer(catalog, sel.Value)
		}
	}
	catalog = pipeline.FilterByQuery(catalog, r.URL.Query().Get("q"))

	totals, err := totalsByItem(ds)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	out := make([]fragranceJSON, 0, len(catalog))
	for _, f := range catalog {
		out = append(out, toFragranceJSON(f, totals[f.Name]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFragrance(w http.ResponseWriter, r *http.Request) {
	ds, err := s.src.Dataset()
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	f, err := pipeline.Lookup(ds.Catalog, chi.URLParam(r, "name"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	totals, err := totalsByItem(ds)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	report := wears.Analyze(ds.Records, f.Name, s.opts.Consumption, s.opts.Now())
	writeJSON(w, http.StatusOK, fragranceDetail{
		Fragrance: toFragranceJSON(f, totals[f.Name]),
		Notes:     f.Notes,
		Report:    report.Export(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Status())
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Events())
}

// handleStream pushes reload events as server-sent events, starting with the
// current snapshot.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := s.src.Subscribe(16)
	defer unsubscribe()

	writeSSE(w, daemon.Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.src.Status().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev daemon.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
