// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/l2obin/dekbind/internal/config"
	dekHTTP "github.com/l2obin/dekbind/internal/dek/http"
	"github.com/l2obin/dekbind/internal/metrics"
)

// Pinger reports whether the key store backend is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingerFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

// Server represents the HTTP server
type Server struct {
	keystore Pinger
	server   *http.Server
	router   *gin.Engine
	logger   *slog.Logger
}

// NewServer creates a new HTTP server. keystore backs the readiness probe.
func NewServer(
	keystore Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		keystore: keystore,
		logger:   logger,
		server: &http.Server{
			Addr:        fmt.Sprintf("%s:%d", host, port),
			ReadTimeout: 15 * time.Second,
			// Wrap and unwrap block on the authenticator prompt.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes. ctx bounds background work
// owned by the router, such as rate limiter cleanup.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	dekHandler *dekHTTP.DekHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// Endpoints that may prompt the authenticator share one per-IP limiter.
	var promptLimiter gin.HandlerFunc
	if cfg.RateLimitEnabled {
		promptLimiter = PromptRateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger)
	}
	prompting := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if promptLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{promptLimiter, h}
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/status", dekHandler.StatusHandler)
		v1.POST("/credential", prompting(dekHandler.EnsureCredentialHandler)...)

		dek := v1.Group("/dek")
		{
			dek.POST("", dekHandler.GenerateHandler)
			dek.GET("", dekHandler.GetExposedHandler)
			dek.POST("/wrap", prompting(dekHandler.WrapHandler)...)
			dek.POST("/unwrap", prompting(dekHandler.UnwrapHandler)...)
			dek.POST("/encrypt", dekHandler.EncryptHandler)
			dek.POST("/decrypt", dekHandler.DecryptHandler)
		}
	}

	s.router = router
}

// GetHandler returns the configured router, or nil before SetupRouter.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the key store is reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.keystore == nil || s.keystore.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"keystore": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"keystore": "ok"},
	})
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
