// Package web provides the HTTP API for building Stardust catalogues: open
// a catalogue session, feed it targets and observations (as JSON or CSV
// uploads), then save to derive and write the artifact bundle.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stardustkit/cataloguer/internal/config"
)

// Server is the HTTP server for the catalogue builder.
type Server struct {
	cfg      *config.Config
	sessions *SessionRegistry
	router   *chi.Mux
	server   *http.Server
	limiter  *rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		cfg:      cfg,
		sessions: NewSessionRegistry(cfg.Catalogue.MaxSessions),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/catalogues", func(r chi.Router) {
		r.Post("/", s.handleCreateCatalogue)
		r.Get("/", s.handleListCatalogues)

		r.Route("/{catalogueID}", func(r chi.Router) {
			r.Get("/", s.handleGetCatalogue)
			r.Delete("/", s.handleDeleteCatalogue)
			r.Get("/summary", s.handleSummary)

			r.Post("/targets", s.handleCreateTarget)
			r.Post("/targets/csv", s.handleUploadTargets)

			r.Post("/observations", s.handleAddObservation)
			r.Post("/observations/csv", s.handleUploadObservations)

			r.Get("/columns/{label}", s.handleColumnExists)

			r.Post("/save", s.handleSave)
			r.Get("/artifacts/{name}", s.handleDownloadArtifact)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds baseline security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
