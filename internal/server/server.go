// Package server implements the pafill HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackzampolin/pafill/internal/api"
	"github.com/jackzampolin/pafill/internal/config"
	"github.com/jackzampolin/pafill/internal/inference"
	"github.com/jackzampolin/pafill/internal/pipeline"
	"github.com/jackzampolin/pafill/internal/server/endpoints"
	"github.com/jackzampolin/pafill/internal/svcctx"
)

// Server is the main pafill HTTP server. It owns the fill pipeline and
// rebuilds it when the configuration changes on disk.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	logger     *slog.Logger

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	filler  *pipeline.Filler
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	// Build the pipeline from the initial config. A missing API key is
	// not fatal here - /health and /api/fields still work, and the fill
	// endpoint reports 503 until a key is configured.
	if err := s.reloadFiller(cfg.ConfigManager.Get()); err != nil {
		cfg.Logger.Warn("fill pipeline unavailable until configured", "error", err)
	}

	// Rebuild the pipeline when the config file changes
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		if err := s.reloadFiller(c); err != nil {
			cfg.Logger.Error("failed to reload fill pipeline", "error", err)
			return
		}
		cfg.Logger.Info("fill pipeline reloaded from config")
	})

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:        net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:     s.withServices(mux),
		ReadTimeout: 30 * time.Second,
		// Fill requests hold the connection open for the whole
		// pipeline run, which can take several minutes.
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// reloadFiller rebuilds the fill pipeline from the given config.
func (s *Server) reloadFiller(c *config.Config) error {
	icfg := c.InferenceConfig()
	icfg.Logger = s.logger
	querier, err := inference.New(context.Background(), icfg)
	if err != nil {
		s.mu.Lock()
		s.filler = nil
		s.mu.Unlock()
		return err
	}

	filler := pipeline.NewFiller(pipeline.FillerConfig{
		Querier:       querier,
		Logger:        s.logger,
		SkipSentinels: c.Fill.SkipSentinels,
	})

	s.mu.Lock()
	s.filler = filler
	s.mu.Unlock()
	return nil
}

// Filler returns the current fill pipeline, or nil if not configured.
func (s *Server) Filler() *pipeline.Filler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filler
}

// Start starts the server. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := svcctx.WithServices(r.Context(), &svcctx.Services{
			Filler:    s.Filler(),
			ConfigMgr: s.configMgr,
			Logger:    s.logger,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the fill pipeline is configured.
// Returns 503 Service Unavailable until an API key is set.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Filler() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"inference not configured; set gemini.api_key"}`))
			return
		}
		next(w, r)
	}
}
