package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newthinker/taengine/internal/analysis"
	handlerapi "github.com/newthinker/taengine/internal/api/handler/api"
	"github.com/newthinker/taengine/internal/api/middleware"
	"github.com/newthinker/taengine/internal/metrics"
	"github.com/newthinker/taengine/internal/notifier"
	"github.com/newthinker/taengine/internal/similarity"
	"github.com/newthinker/taengine/internal/storage/report"
)

// Server represents the HTTP server for the analysis engine
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	APIKey       string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MetricsPath  string
	Similarity   similarity.Config
}

// Dependencies holds the components the handlers serve.
type Dependencies struct {
	Engine   *analysis.Engine
	Store    report.Store
	Archiver *analysis.Archiver   // optional
	Metrics  *metrics.Registry    // optional; enables /metrics
	Notifier *notifier.Dispatcher // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if deps.Store == nil {
		deps.Store = report.NewMemoryStore(100)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.Similarity.Window == 0 {
		cfg.Similarity = similarity.DefaultConfig()
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	analyze := handlerapi.NewAnalyzeHandler(deps.Engine, deps.Store, deps.Archiver, s.logger)
	indicators := handlerapi.NewIndicatorsHandler(deps.Engine)
	reports := handlerapi.NewReportsHandler(deps.Store, deps.Archiver)
	similar := handlerapi.NewSimilarityHandler(deps.Store, cfg.Similarity, s.logger.Named("similarity"))
	if deps.Metrics != nil {
		analyze.SetStoredObserver(deps.Metrics.SetReportsStored)
	}
	if deps.Notifier != nil {
		analyze.SetDispatcher(deps.Notifier)
	}

	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.APIKeyAuth(cfg.APIKey)(middleware.MaxBody(cfg.MaxBodyBytes)(h))
	}

	s.mux.Handle("POST /api/v1/analyze", protect(analyze.Analyze))
	s.mux.Handle("POST /api/v1/indicators/{name}", protect(indicators.Compute))
	s.mux.Handle("GET /api/v1/reports", protect(reports.List))
	s.mux.Handle("GET /api/v1/reports/{id}", protect(reports.Get))
	s.mux.Handle("GET /api/v1/archive", protect(reports.ArchiveKeys))
	s.mux.Handle("GET /api/v1/archive/{key...}", protect(reports.ArchivedReport))
	s.mux.Handle("POST /api/v1/similarity", protect(similar.Search))

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
