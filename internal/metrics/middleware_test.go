package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/fragrances/{name}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, name := range []string{"Aventus", "Dune"} {
		req := httptest.NewRequest("GET", "/api/fragrances/"+name, http.NoBody)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
	}

	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/fragrances/{name}", "200"))
	if val < 2 {
		t.Errorf("expected both requests under the route pattern, got %f", val)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMetricsMiddleware_DifferentStatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	tests := []struct {
		path           string
		expectedStatus string
	}{
		{"/ok", "200"},
		{"/missing", "404"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, http.NoBody)
			r.ServeHTTP(httptest.NewRecorder(), req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.expectedStatus))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.expectedStatus, val)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	if normalizePath("") != "unknown" {
		t.Error("empty pattern should normalize to unknown")
	}
	if normalizePath("/charts/{chart}") != "/charts/{chart}" {
		t.Error("route pattern should pass through")
	}
}

func TestWorkbookMetrics(t *testing.T) {
	before := testutil.ToFloat64(WorkbookLoadsTotal.WithLabelValues("parse", "ok"))
	WorkbookLoadsTotal.WithLabelValues("parse", "ok").Inc()
	if got := testutil.ToFloat64(WorkbookLoadsTotal.WithLabelValues("parse", "ok")); got != before+1 {
		t.Fatalf("workbook_loads_total = %f, want %f", got, before+1)
	}

	DatasetFragrances.Set(42)
	if got := testutil.ToFloat64(DatasetFragrances); got != 42 {
		t.Fatalf("dataset_fragrances = %f, want 42", got)
	}
}
