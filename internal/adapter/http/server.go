// Package http serves health, readiness, metrics and the dashboard API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
	"github.com/DavidKimmel/DC-Traffic2/internal/observability"
	"github.com/DavidKimmel/DC-Traffic2/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboard is the query side of the pipeline coordinator.
type Dashboard interface {
	sharedobs.ReadinessChecker
	Options() pipeline.Options
	Compute(sel domain.Selection) pipeline.Views
	Current() pipeline.Views
	OnSelectionChanged(ctx context.Context, sel domain.Selection) pipeline.Views
}

// BoundarySource returns the encoded ward boundary overlay.
type BoundarySource interface {
	GeoJSON() ([]byte, error)
}

// Server exposes health, readiness, metrics and dashboard HTTP endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  Dashboard
	boundaries BoundarySource
	exporter   pipeline.Exporter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health routes and the /api routes.
func NewServer(addr string, dashboard Dashboard, boundaries BoundarySource, exporter pipeline.Exporter, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboard:  dashboard,
		boundaries: boundaries,
		exporter:   exporter,
		metrics:    metrics,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(dashboard))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/views", s.handleViews)
	mux.HandleFunc("GET /api/map.geojson", s.handleMap)
	mux.HandleFunc("GET /api/charts/severity.png", s.handleSeverityChart)
	mux.HandleFunc("GET /api/charts/trend.png", s.handleTrendChart)
	mux.HandleFunc("GET /api/export.xlsx", s.handleExport)
	mux.HandleFunc("GET /api/selection", s.handleGetSelection)
	mux.HandleFunc("PUT /api/selection", s.handlePutSelection)
	mux.HandleFunc("GET /api/wards.geojson", s.handleWards)

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
