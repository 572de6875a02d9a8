package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns the CORS handler for a browser client served
// from another origin, or nil when CORS is disabled or no origin survives
// parsing.
//
// The DEK API only takes JSON over GET and POST and carries no cookies or
// bearer tokens. Retry-After is exposed so a browser can honour the prompt
// rate limiter.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, skipping")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        10 * time.Minute,
	})
}

// parseOrigins splits CORS_ALLOW_ORIGINS on commas, dropping blanks.
func parseOrigins(originsStr string) []string {
	var origins []string
	for _, part := range strings.Split(originsStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
