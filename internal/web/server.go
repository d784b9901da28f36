// Package web provides the HTTP server and handlers for the order bridge.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"orderbridge/internal/catalog"
	"orderbridge/internal/config"
	"orderbridge/internal/export"
	"orderbridge/internal/history"
	"orderbridge/internal/importer"
	"orderbridge/internal/lyra"
	"orderbridge/internal/metrics"
)

// Server is the HTTP server for the order bridge.
type Server struct {
	cfg      *config.Config
	client   *lyra.Client
	catalog  *catalog.Cache
	importer *importer.Importer
	exporter *export.Driver
	history  *history.Store // nil when no database is configured
	metrics  *metrics.Metrics

	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server instance. history may be nil.
func NewServer(
	cfg *config.Config,
	client *lyra.Client,
	cat *catalog.Cache,
	imp *importer.Importer,
	exp *export.Driver,
	hist *history.Store,
	m *metrics.Metrics,
) *Server {
	s := &Server{
		cfg:      cfg,
		client:   client,
		catalog:  cat,
		importer: imp,
		exporter: exp,
		history:  hist,
		metrics:  m,
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
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/orders/import", s.handleImportOrders)
		r.Get("/orders/export", s.handleExportOrders)
		r.Get("/orders", s.handleListOrders)

		r.Get("/products", s.handleListProducts)
		r.Post("/catalog/refresh", s.handleCatalogRefresh)

		r.Get("/imports", s.handleListImports)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // 0 keeps streaming exports alive
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// exportFilename names the attachment for today's export.
func exportFilename(now time.Time) string {
	return "orders-completed-" + now.UTC().Format("2006-01-02") + ".csv"
}
