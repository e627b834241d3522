package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
	"github.com/couchcryptid/climate-snapshot-service/internal/observability"
)

// Catalog exposes the loaded reference data.
type Catalog interface {
	Resolver() *domain.Resolver
	Regions() *domain.AdminIndex
	Districts() *domain.DistrictMap
}

// Snapshots lists what the cache holds.
type Snapshots interface {
	domain.SnapshotStore
	Years() []int
	Crossings() map[int]int
}

// Server exposes health, readiness, metrics and the read API.
type Server struct {
	httpServer *http.Server
	catalog    Catalog
	snapshots  Snapshots
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server. ratePerMinute limits /v1 per client IP.
func NewServer(addr string, ready sharedobs.ReadinessChecker, catalog Catalog, snapshots Snapshots, metrics *observability.Metrics, logger *slog.Logger, ratePerMinute int) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog:   catalog,
		snapshots: snapshots,
		metrics:   metrics,
		logger:    logger,
	}

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(httprate.Limit(
			ratePerMinute,
			time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByRealIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			}),
		))
		r.Get("/years", s.handleYears)
		r.Get("/view", s.handleView)
		r.Get("/groups", s.handleGroups)
		r.Get("/crossings", s.handleCrossings)
		r.Get("/districts", s.handleDistricts)
		r.Get("/districts/{id}/region", s.handleDistrictRegion)
		r.Get("/regions/{id}", s.handleRegion)
		r.Get("/series", s.handleSeries)
	})

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

type yearInfo struct {
	Year     int               `json:"year"`
	Outcome  domain.LoadStatus `json:"outcome"`
	Events   int               `json:"events"`
	Regions  int               `json:"regions"`
	LoadedAt time.Time         `json:"loaded_at"`
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	s.metrics.ResolveRequests.WithLabelValues("years").Inc()
	years := s.snapshots.Years()
	out := make([]yearInfo, 0, len(years))
	for _, y := range years {
		snap, ok := s.snapshots.Snapshot(y)
		if !ok {
			continue
		}
		out = append(out, yearInfo{
			Year:     snap.Year,
			Outcome:  snap.Status,
			Events:   len(snap.Catastrophes),
			Regions:  len(snap.Statistics),
			LoadedAt: snap.LoadedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.metrics.ResolveRequests.WithLabelValues("view").Inc()
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Resolver().Resolve(sel))
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	s.metrics.ResolveRequests.WithLabelValues("groups").Inc()
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view := s.catalog.Resolver().Resolve(sel)
	writeJSON(w, http.StatusOK, domain.GroupCatastrophes(view.Catastrophes))
}

func (s *Server) handleCrossings(w http.ResponseWriter, _ *http.Request) {
	s.metrics.ResolveRequests.WithLabelValues("crossings").Inc()
	crossings := s.snapshots.Crossings()
	out := make([]domain.Crossing, 0, len(crossings))
	for _, region := range slices.Sorted(maps.Keys(crossings)) {
		out = append(out, domain.Crossing{Region: region, Year: crossings[region]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDistricts(w http.ResponseWriter, _ *http.Request) {
	s.metrics.ResolveRequests.WithLabelValues("districts").Inc()
	districts := s.catalog.Districts().Districts()
	if districts == nil {
		districts = []domain.District{}
	}
	writeJSON(w, http.StatusOK, districts)
}

func (s *Server) handleDistrictRegion(w http.ResponseWriter, r *http.Request) {
	s.metrics.ResolveRequests.WithLabelValues("district_region").Inc()
	id, err := parseInt(chi.URLParam(r, "id"), "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	region, ok := s.catalog.Regions().FindRegion(id)
	if !ok {
		writeError(w, http.StatusNotFound, "district has no region")
		return
	}
	writeJSON(w, http.StatusOK, region)
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	s.metrics.ResolveRequests.WithLabelValues("region").Inc()
	id, err := parseInt(chi.URLParam(r, "id"), "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	region, ok := s.catalog.Regions().Region(id)
	if !ok {
		writeError(w, http.StatusNotFound, "region not found")
		return
	}
	writeJSON(w, http.StatusOK, region)
}

type seriesResponse struct {
	District  int                  `json:"district"`
	Statistic domain.Statistic     `json:"statistic"`
	Points    []domain.SeriesPoint `json:"points"`
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	s.metrics.ResolveRequests.WithLabelValues("series").Inc()
	district, stat, err := parseSeries(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		District:  district,
		Statistic: stat,
		Points:    s.catalog.Resolver().Series(district, stat),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
