package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/elabx-org/identify/internal/audit"
	"github.com/elabx-org/identify/internal/config"
	"github.com/elabx-org/identify/internal/metrics"
	"github.com/elabx-org/identify/internal/provider"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const healthCacheTTL = 60 * time.Second

// Resolver is the part of provider.Manager the server depends on.
type Resolver interface {
	Identify(ctx context.Context, email string) provider.Result
	Health(ctx context.Context) []provider.ProviderHealth
}

type Server struct {
	cfg      *config.Config
	router   *chi.Mux
	resolver Resolver
	auditor  *audit.Logger
	metrics  *metrics.Metrics

	healthMu        sync.RWMutex
	healthCached    *HealthResponse
	healthCheckedAt time.Time
}

// NewServer wires routes around resolver, which may be nil in tests that only
// exercise auth and health.
func NewServer(cfg *config.Config, resolver Resolver) *Server {
	s := &Server{
		cfg:      cfg,
		resolver: resolver,
	}
	s.router = chi.NewRouter()
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.mountRoutes()
	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) SetAuditor(a *audit.Logger) {
	s.auditor = a
}

func (s *Server) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

func (s *Server) mountRoutes() {
	// Public (no auth)
	s.router.Get("/v1/health", s.handleHealth)
	s.router.Get("/metrics", s.handleMetrics)

	// Protected routes (bearer token required when APIToken is set)
	s.router.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Get("/v1/identify", s.handleIdentify)
		r.Post("/v1/identify", s.handleIdentify)
		r.Get("/v1/audit", s.handleAudit)
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		http.Error(w, "metrics disabled", http.StatusNotFound)
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(s.router, "identify"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second, // a full chain walk makes up to four sequential fetches
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("identify listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}
