// Package server exposes article generation over HTTP for internal tools and
// the web frontend.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"draftsmith/internal/config"
	"draftsmith/internal/core"
	"draftsmith/internal/imagegen"
	"draftsmith/internal/llm"
	"draftsmith/internal/logger"
	"draftsmith/internal/pipeline"
)

// Generator runs one generation request. Implemented by pipeline.Runner.
type Generator interface {
	Run(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error)
}

// LinkIntegrator weaves internal links into article markdown via the model.
// Implemented by llm.Writer; an empty return means "use the string fallback".
type LinkIntegrator interface {
	IntegrateLinks(ctx context.Context, content, links string) string
}

// Server is the HTTP front for the generation pipeline.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        *config.Config
	runner     Generator
	writer     LinkIntegrator
	log        *slog.Logger
}

// New creates the server and wires its routes. The pipeline skips file
// exports; API clients get the full result as JSON instead.
func New(cfg *config.Config) (*Server, error) {
	runner, err := pipeline.New(cfg, pipeline.WithoutFileExports())
	if err != nil {
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}
	writer, err := llm.NewWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating writer: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		runner: runner,
		writer: writer,
		log:    logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	// Generation runs several model calls back to back; the timeout has to
	// cover the slowest full run, not a single request hop.
	s.router.Use(middleware.Timeout(3 * time.Minute))

	if s.cfg.Server.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Server.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/images/regenerate", s.handleRegenerateImage)
		r.Post("/links/integrate", s.handleIntegrateLinks)
		r.Get("/promotions", s.handlePromotions)
	})
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Router returns the chi router, used by tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// imageEngine resolves the image engine for a regeneration request.
func (s *Server) imageEngine(provider string) (*imagegen.Engine, error) {
	return imagegen.NewEngine(s.cfg, provider)
}
