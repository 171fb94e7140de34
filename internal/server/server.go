package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"mediabank/internal/auth"
	"mediabank/internal/constants"
	"mediabank/internal/logger"
	"mediabank/internal/version"
)

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	httpServer *http.Server
	app        *App
	logger     *logger.Logger
	metrics    *Metrics
	handler    http.Handler
}

// NewServer creates a new HTTP server for the app.
func NewServer(app *App, addr string) *Server {
	s := &Server{
		app:     app,
		logger:  app.Logger,
		metrics: NewMetrics(),
	}

	router := chi.NewRouter()
	s.registerRoutes(router)

	authMW := auth.NewMiddleware(app.Issuer, app.Logger)
	s.handler = Chain(router,
		RequestID,
		SecurityHeaders,
		RequestLogger(app.Logger),
		s.metrics.Instrument,
		GzipCompress,
		authMW.Authenticate,
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  0, // streaming uploads
		WriteTimeout: 0, // streaming downloads
		IdleTimeout:  constants.HTTPIdleTimeout,
	}

	return s
}

// Handler returns the fully assembled handler, middleware included.
// Used by tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)

	r.Get("/api/profile", s.handleGetProfile)
	r.Put("/api/profile", s.handleUpdateProfile)
	r.Put("/api/profile/password", s.handleChangePassword)

	r.Post("/api/upload", s.handleUpload)
	r.Get("/api/media", s.handleListMedia)
	r.Get("/api/media/{id}/download", s.handleDownloadMedia)

	r.Get("/api/events", s.handleListEvents)
	r.Get("/api/events/suggestions", s.handleSuggestEvents)
	r.Get("/api/stats", s.handleUserStats)

	r.Get("/api/admin/schools", s.handleListSchools)
	r.Put("/api/admin/schools/{id}/ban", s.handleToggleBan)
	r.Get("/api/admin/media", s.handleListAllMedia)
	r.Get("/api/admin/stats", s.handleGlobalStats)
	r.Post("/api/admin/media/download", s.handleBulkExport)

	r.Get("/api/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
}

// handleHealth reports liveness, version, and uptime.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]interface{}{
		"status":  "ok",
		"version": version.Version,
		"uptime":  time.Since(s.app.StartedAt).Round(time.Second).String(),
	})
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server: listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		s.logger.Info("Server: received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(constants.ShutdownTimeoutSecs)*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("Server: stopped")
	return nil
}
