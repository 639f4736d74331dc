package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/aicoder/backend/internal/httputil"
)

// rateLimitCleanupInterval is how often idle per-IP limiters are dropped.
const rateLimitCleanupInterval = 5 * time.Minute

// ipRateLimiterStore holds per-IP rate limiters with automatic cleanup.
type ipRateLimiterStore struct {
	limiters   sync.Map // map[string]*ipRateLimiterEntry (IP -> limiter)
	limit      rate.Limit
	burst      int
	staleAfter time.Duration
}

// ipRateLimiterEntry holds a rate limiter and last access time for cleanup.
type ipRateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// newIPRateLimiterStore allows maxRequests per window for each IP.
//
// The bucket holds maxRequests tokens and refills at maxRequests/window, so an IP
// idle for a whole window is back at full capacity. Such entries are
// indistinguishable from new ones and are removed by cleanup.
func newIPRateLimiterStore(maxRequests int, window time.Duration) *ipRateLimiterStore {
	return &ipRateLimiterStore{
		limit:      rate.Limit(float64(maxRequests) / window.Seconds()),
		burst:      maxRequests,
		staleAfter: window,
	}
}

// RateLimitMiddleware enforces per-IP rate limiting on every request.
//
// Uses c.ClientIP(), which honours the engine's trusted proxy settings. The
// cleanup goroutine stops when ctx is cancelled.
//
// Returns:
//   - 429 Too Many Requests with Retry-After when the IP exhausted its budget
//   - Continues otherwise, with RateLimit-Limit and RateLimit-Remaining set
func RateLimitMiddleware(
	ctx context.Context,
	maxRequests int,
	window time.Duration,
	logger *slog.Logger,
) gin.HandlerFunc {
	store := newIPRateLimiterStore(maxRequests, window)

	go store.cleanupStale(ctx, rateLimitCleanupInterval)

	limitHeader := strconv.Itoa(maxRequests)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.getLimiter(clientIP, time.Now())

		c.Header("RateLimit-Limit", limitHeader)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(math.Ceil(reservation.Delay().Seconds()))
			reservation.Cancel()
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Debug("rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))

			c.Header("RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Too many requests from this IP, please try again later.",
			})
			return
		}

		remaining := int(math.Floor(limiter.Tokens()))
		if remaining < 0 {
			remaining = 0
		}
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

// getLimiter retrieves or creates the rate limiter for an IP.
func (s *ipRateLimiterStore) getLimiter(ip string, now time.Time) *rate.Limiter {
	if val, ok := s.limiters.Load(ip); ok {
		entry := val.(*ipRateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &ipRateLimiterEntry{
		limiter:    rate.NewLimiter(s.limit, s.burst),
		lastAccess: now,
	}
	actual, _ := s.limiters.LoadOrStore(ip, entry)
	return actual.(*ipRateLimiterEntry).limiter
}

// removeStale drops limiters idle for longer than staleAfter.
func (s *ipRateLimiterStore) removeStale(now time.Time) {
	threshold := now.Add(-s.staleAfter)
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*ipRateLimiterEntry)
		entry.mu.Lock()
		shouldDelete := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if shouldDelete {
			s.limiters.Delete(key)
		}
		return true
	})
}

// cleanupStale periodically removes idle limiters until ctx is done.
func (s *ipRateLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.removeStale(now)
		}
	}
}
