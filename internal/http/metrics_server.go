package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsServer serves GET /metrics on METRICS_PORT, apart from the DEK API
// listener. Scrapes are not access-logged.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer serves scrape on /metrics.
func NewMetricsServer(host string, port int, logger *slog.Logger, scrape http.Handler) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(scrape))

	return &MetricsServer{
		server: &http.Server{
			Addr:              net.JoinHostPort(host, strconv.Itoa(port)),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
		},
		logger: logger.With(slog.String("listener", "metrics")),
	}
}

// GetHandler returns the scrape router.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start blocks until Shutdown. In-flight scrapes see ctx cancelled.
func (s *MetricsServer) Start(ctx context.Context) error {
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }
	s.logger.Info("starting metrics server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	return nil
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
