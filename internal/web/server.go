// Package web serves the browser dashboard: an HTML page driven by query
// parameters, PNG charts, a small JSON API and Prometheus metrics.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clubsmell/fragdash/internal/daemon"
	"github.com/clubsmell/fragdash/internal/metrics"
	"github.com/clubsmell/fragdash/internal/model"
	"github.com/clubsmell/fragdash/internal/pipeline"
	"github.com/clubsmell/fragdash/internal/wears"
)

// Source provides the dataset and reload feed. *daemon.Service implements it.
type Source interface {
	Dataset() (*pipeline.Dataset, error)
	Status() daemon.Status
	Events() []daemon.Event
	Subscribe(buffer int) (<-chan daemon.Event, func())
}

// Options tune the calculations behind every page and chart.
type Options struct {
	Consumption wears.ConsumptionModel
	MinVolume   float64
	MaxVolume   float64
	Now         func() time.Time // defaults to time.Now
}

// Server renders the dashboard from whatever dataset the source holds at
// request time.
type Server struct {
	src    Source
	opts   Options
	logger *zap.Logger

	errorHandlers []errorHandler
}

// NewServer creates the dashboard server.
func NewServer(src Source, opts Options, logger *zap.Logger) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MinVolume <= 0 || opts.MaxVolume <= opts.MinVolume {
		opts.MinVolume, opts.MaxVolume = wears.DefaultMinVolume, wears.DefaultMaxVolume
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{src: src, opts: opts, logger: logger}
	s.errorHandlers = []errorHandler{
		sentinelHandler(model.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(daemon.ErrNotLoaded, http.StatusServiceUnavailable, "not_loaded"),
		sentinelHandler(errBadRequest, http.StatusBadRequest, "bad_request"),
		sentinelHandler(errNoChartData, http.StatusNotFound, "no_chart_data"),
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/", s.handlePage)
	r.Get("/charts/{chart}.png", s.handleChart)

	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", s.handleOverview)
		r.Get("/fragrances", s.handleFragrances)
		r.Get("/fragrances/{name}", s.handleFragrance)
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// ListenAndServe serves h on addr until ctx is canceled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
