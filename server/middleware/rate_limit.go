package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apperrors "github.com/hrygo/gotadate/internal/errors"
	"github.com/hrygo/gotadate/plugin/gotadate/cache"
)

const (
	// maxTrackedClients bounds the number of per-client limiters held in memory.
	maxTrackedClients = 10000
	// idleLimiterTTL is how long an unused limiter is kept.
	idleLimiterTTL = 10 * time.Minute
)

// RateLimiter provides per-key token bucket rate limiting.
type RateLimiter struct {
	mu     sync.Mutex
	limit  rate.Limit
	burst  int
	limits *cache.LRU[*rate.Limiter]
}

// NewRateLimiter creates a limiter allowing perSecond requests per key with
// the given burst. Non-positive values fall back to 10 req/s with a burst of 20.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		perSecond = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &RateLimiter{
		limit:  rate.Limit(perSecond),
		burst:  burst,
		limits: cache.NewLRU[*rate.Limiter](maxTrackedClients, idleLimiterTTL),
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limits.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
	}
	// Refresh the TTL on every use so only idle clients expire.
	rl.limits.Set(key, limiter, 0)
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Wait waits for a request to be allowed.
// Returns error if the context is cancelled or rate limit exceeded.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	return rl.getLimiter(key).Wait(ctx)
}

// Middleware rejects requests over the limit with 429, keyed by client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				err := apperrors.RateLimitExceeded("too many requests")
				return c.JSON(err.HTTPStatus(), map[string]string{
					"code":    string(err.Code),
					"message": err.Message,
				})
			}
			return next(c)
		}
	}
}
