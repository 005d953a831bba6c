package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/dwd-warncodes/internal/domain"
	"github.com/couchcryptid/dwd-warncodes/internal/observability"
)

// AlertSource returns the current DWD warnings.
type AlertSource interface {
	FetchAlerts(ctx context.Context) ([]domain.Alert, error)
}

// Server exposes the catalog plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	catalog    *domain.Catalog
	alerts     AlertSource
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the catalog routes under /v1 and
// /healthz, /readyz, and /metrics. The /v1/alerts route is registered only
// when alerts is non-nil.
func NewServer(addr string, catalog *domain.Catalog, alerts AlertSource, ready sharedobs.ReadinessChecker, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 40 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		alerts:  alerts,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/categories", s.handleCategories)
	mux.HandleFunc("GET /v1/categories/{category}", s.handleCategory)
	mux.HandleFunc("GET /v1/categories/{category}/{code}", s.handleEntry)
	mux.HandleFunc("GET /v1/codes/{code}", s.handleCode)
	mux.HandleFunc("GET /v1/search", s.handleSearch)
	if alerts != nil {
		mux.HandleFunc("GET /v1/alerts", s.handleAlerts)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type categorySummary struct {
	Name  domain.Category `json:"name"`
	Title string          `json:"title"`
	Count int             `json:"count"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	counts := s.catalog.Counts()
	out := make([]categorySummary, 0, len(counts))
	for _, c := range domain.Categories() {
		out = append(out, categorySummary{Name: c, Title: c.Title(), Count: counts[c]})
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	c, err := domain.ParseCategory(r.PathValue("category"))
	if err != nil {
		s.countLookup("category", "error")
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var entries []domain.WarningEntry
	switch r.URL.Query().Get("sort") {
	case "", "document":
		entries = s.catalog.Entries(c)
	case "event":
		entries = s.catalog.SortedByEvent(c)
	default:
		s.countLookup("category", "error")
		writeError(w, http.StatusBadRequest, "sort must be document or event")
		return
	}

	s.countLookup("category", "hit")
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"category": c,
		"title":    c.Title(),
		"entries":  entries,
	})
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	c, err := domain.ParseCategory(r.PathValue("category"))
	if err != nil {
		s.countLookup("entry", "error")
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	code := r.PathValue("code")
	e, ok := s.catalog.Lookup(c, code)
	if !ok {
		s.countLookup("entry", "miss")
		writeError(w, http.StatusNotFound, "code "+code+" not found in "+string(c))
		return
	}
	s.countLookup("entry", "hit")
	sharedobs.WriteJSON(w, http.StatusOK, e)
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	entries := s.catalog.LookupAll(code)
	if len(entries) == 0 {
		s.countLookup("code", "miss")
		writeError(w, http.StatusNotFound, "code "+code+" not found")
		return
	}
	s.countLookup("code", "hit")
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"code": code, "entries": entries})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.countLookup("search", "error")
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	entries := s.catalog.Search(q)
	result := "hit"
	if len(entries) == 0 {
		result = "miss"
		entries = []domain.WarningEntry{}
	}
	s.countLookup("search", result)
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"query": q, "entries": entries})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	ags := strings.TrimSpace(r.URL.Query().Get("ags"))
	if ags == "" || !domain.IsNumericCode(ags) {
		s.countLookup("alerts", "error")
		writeError(w, http.StatusBadRequest, "query parameter ags must be a numeric municipality key")
		return
	}

	alerts, err := s.alerts.FetchAlerts(r.Context())
	if err != nil {
		s.logger.Warn("fetch dwd alerts failed", "error", err)
		s.countLookup("alerts", "error")
		writeError(w, http.StatusBadGateway, "dwd feed unavailable")
		return
	}

	resolved := domain.ResolveAlerts(s.catalog, domain.FilterByAGS(alerts, ags))
	result := "hit"
	if len(resolved) == 0 {
		result = "miss"
	}
	s.countLookup("alerts", result)
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"ags": ags, "alerts": resolved})
}

func (s *Server) countLookup(endpoint, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Lookups.WithLabelValues(endpoint, result).Inc()
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
