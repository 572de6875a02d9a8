package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// promptRateLimiterStore holds per-IP rate limiters with automatic cleanup.
type promptRateLimiterStore struct {
	limiters sync.Map // map[string]*promptRateLimiterEntry (IP -> limiter)
	rps      float64
	burst    int
}

// promptRateLimiterEntry holds a rate limiter and last access time for cleanup.
type promptRateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// PromptRateLimitMiddleware enforces per-IP rate limiting on endpoints that
// prompt the authenticator (credential creation, wrap, unwrap).
//
// Uses token bucket algorithm via golang.org/x/time/rate. Each IP address gets
// an independent rate limiter, keyed by c.ClientIP(). Stale limiters are
// evicted until ctx is done.
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func PromptRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &promptRateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	go store.cleanupStale(ctx, 5*time.Minute, time.Hour)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.getLimiter(clientIP)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Debug("prompt rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many authenticator requests from this IP. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getLimiter retrieves or creates a rate limiter for an IP address.
func (s *promptRateLimiterStore) getLimiter(clientIP string) *rate.Limiter {
	if val, ok := s.limiters.Load(clientIP); ok {
		entry := val.(*promptRateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &promptRateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}
	actual, _ := s.limiters.LoadOrStore(clientIP, entry)
	return actual.(*promptRateLimiterEntry).limiter
}

// cleanupStale removes limiters not accessed within maxIdle, every interval.
func (s *promptRateLimiterStore) cleanupStale(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(time.Now().Add(-maxIdle))
		}
	}
}

func (s *promptRateLimiterStore) evictIdle(threshold time.Time) {
	s.limiters.Range(func(key, value interface{}) bool {
		entry := value.(*promptRateLimiterEntry)
		entry.mu.Lock()
		shouldDelete := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if shouldDelete {
			s.limiters.Delete(key)
		}
		return true
	})
}
