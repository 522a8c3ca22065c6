// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/pantrymatch/server/internal/infrastructure/config"
	"github.com/pantrymatch/server/internal/infrastructure/http/handlers"
	"github.com/pantrymatch/server/internal/infrastructure/http/middleware"
	"github.com/pantrymatch/server/internal/infrastructure/monitoring"
	"github.com/pantrymatch/server/internal/ports/inbound"
	apperrors "github.com/pantrymatch/server/pkg/errors"
	"github.com/pantrymatch/server/pkg/healthcheck"
)

// Dependencies are the collaborators the server routes to. Metrics and
// Limiter are optional.
type Dependencies struct {
	Service inbound.SuggestionService
	Health  *healthcheck.HealthCheck
	Metrics *monitoring.MetricsCollector
	Limiter middleware.Limiter
}

// APIServer represents the JSON API HTTP server
type APIServer struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *chi.Mux
	deps   Dependencies
}

// NewAPIServer creates a new API server instance
func NewAPIServer(cfg *config.Config, log *zap.Logger, deps Dependencies) *APIServer {
	s := &APIServer{
		config: cfg,
		logger: log.Named("apiserver"),
		deps:   deps,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr: cfg.ServerAddr(),
		Handler: otelhttp.NewHandler(s.router, "pantrymatch",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       zap.NewStdLog(s.logger),
	}

	return s
}

// setupRoutes configures the router
func (s *APIServer) setupRoutes() *chi.Mux {
	m := middleware.New(s.config, s.logger)
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(m.Logger)
	r.Use(m.Recovery)
	r.Use(m.Security)
	r.Use(m.CORS)
	if s.deps.Metrics != nil {
		r.Use(s.deps.Metrics.HTTPMiddleware)
	}

	healthPath := s.config.Monitoring.HealthCheckPath
	if healthPath == "" {
		healthPath = "/health"
	}
	r.Get(healthPath, s.deps.Health.Handler())
	r.Get(healthPath+"/live", s.deps.Health.LivenessHandler())
	r.Get(healthPath+"/ready", s.deps.Health.ReadinessHandler())

	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		s.setupAPIV1Routes(r, m)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, apperrors.NewNotFoundError("Route"))
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *APIServer) setupAPIV1Routes(r chi.Router, m *middleware.Middleware) {
	if s.config.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))
	}
	r.Use(m.JSONOnly)
	if s.deps.Limiter != nil {
		var onReject func()
		if s.deps.Metrics != nil {
			onReject = s.deps.Metrics.RateLimited
		}
		r.Use(m.RateLimit(s.deps.Limiter, onReject))
	}

	h := handlers.NewAPIHandlers(s.deps.Service, handlers.Options{
		DefaultMaxResults: s.config.Matching.APIDefaultMaxResults,
		MaxResultsLimit:   s.config.Matching.MaxResultsLimit,
	}, s.logger)
	docs := NewOpenAPIHandler()

	r.Post("/recipes/suggest", h.SuggestRecipes)
	r.Get("/recipes/{id}", h.GetRecipe)
	r.Get("/ingredients", h.ListIngredients)
	r.Get("/openapi.yaml", docs.ServeOpenAPISpec)
}

// Handler returns the instrumented root handler
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the listen address and serves in the background. Bind errors
// are returned; serve errors are logged.
func (s *APIServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	s.logger.Info("Starting API server", zap.String("address", ln.Addr().String()))
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the server
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server...")
	return s.server.Shutdown(ctx)
}
