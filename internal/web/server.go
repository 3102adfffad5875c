// Package web provides the HTTP server: the REST resources, bulk import and
// export endpoints, SSE import progress and the HTML dashboard.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/tcm/internal/config"
	"github.com/JonMunkholm/tcm/internal/core"
	"github.com/JonMunkholm/tcm/internal/domain"
	"github.com/JonMunkholm/tcm/internal/metrics"
	webmw "github.com/JonMunkholm/tcm/internal/web/middleware"
)

// Server is the HTTP server for the test-case manager.
type Server struct {
	service *core.Service
	cfg     *config.Config
	metrics *metrics.Metrics
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server. m may be nil, in which case no metrics
// are recorded and /metrics is not mounted.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		metrics: m,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(webmw.Metrics(s.metrics))
	}
	s.router.Use(middleware.Compress(5))
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleDashboardPage)
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil && s.cfg.Server.MetricsEnabled {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		// Import progress streams and result waits outlive the request timeout.
		r.Post("/testcases/import", s.handleImport)
		r.Get("/imports/{importID}", s.handleImportStatus)
		r.Get("/imports/{importID}/progress", s.handleImportProgress)
		r.Get("/imports/{importID}/result", s.handleImportResult)
		r.Post("/imports/{importID}/cancel", s.handleCancelImport)

		r.Group(func(r chi.Router) {
			if s.cfg.Server.RequestTimeout > 0 {
				r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
			}

			r.Get("/dashboard", s.handleDashboard)
			r.Get("/limiter", s.handleLimiterStatus)
			r.Get("/testcases/export", s.handleExport)
			r.Get("/testcases/template", s.handleTemplate)
			r.Get("/testcases/module/{moduleID}", s.handleTestCasesByModule)
			r.Get("/submodules/module/{moduleID}", s.handleSubModulesByModule)

			r.Mount("/modules", resource[domain.Module, domain.Module]{
				list: s.service.ListModules, get: s.service.GetModule,
				create: s.service.CreateModule, update: s.service.UpdateModule,
				remove: s.service.DeleteModule,
			}.routes(s))
			r.Mount("/submodules", resource[domain.SubModule, domain.SubModule]{
				list: s.service.ListSubModules, get: s.service.GetSubModule,
				create: s.service.CreateSubModule, update: s.service.UpdateSubModule,
				remove: s.service.DeleteSubModule,
			}.routes(s))
			r.Mount("/priorities", resource[domain.Priority, domain.Priority]{
				list: s.service.ListPriorities, get: s.service.GetPriority,
				create: s.service.CreatePriority, update: s.service.UpdatePriority,
				remove: s.service.DeletePriority,
			}.routes(s))
			r.Mount("/automation-statuses", resource[domain.AutomationStatus, domain.AutomationStatus]{
				list: s.service.ListAutomationStatuses, get: s.service.GetAutomationStatus,
				create: s.service.CreateAutomationStatus, update: s.service.UpdateAutomationStatus,
				remove: s.service.DeleteAutomationStatus,
			}.routes(s))
			r.Mount("/automated-by", resource[domain.User, domain.User]{
				list: s.service.ListUsers, get: s.service.GetUser,
				create: s.service.CreateUser, update: s.service.UpdateUser,
				remove: s.service.DeleteUser,
			}.routes(s))
			r.Mount("/tags", resource[domain.Tag, domain.Tag]{
				list: s.service.ListTags, get: s.service.GetTag,
				create: s.service.CreateTag, update: s.service.UpdateTag,
				remove: s.service.DeleteTag,
			}.routes(s))
			r.Mount("/testcases", resource[domain.TestCaseInput, domain.TestCase]{
				list: s.service.ListTestCases, get: s.service.GetTestCase,
				create: s.service.CreateTestCase, update: s.service.UpdateTestCase,
				remove: s.service.DeleteTestCase,
			}.routes(s))
		})
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // 0 keeps SSE streams open
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
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
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
