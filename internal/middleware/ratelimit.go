package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ActionLimiter is a limiter shared between server instances.
type ActionLimiter interface {
	AllowAction(ctx context.Context, key, action string, rate, burst int) (bool, error)
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per key and action. It asks the shared
// limiter first and falls back to in-process token buckets when there is
// none or it fails.
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex
	rps      int
	burst    int
	shared   ActionLimiter
}

func NewRateLimiter(rps int, shared ActionLimiter) *RateLimiter {
	if rps <= 0 {
		rps = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rps,
		burst:    rps * 2,
		shared:   shared,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter
}

// Allow reports whether one more request for key and action may proceed.
func (rl *RateLimiter) Allow(ctx context.Context, key, action string) bool {
	if rl.shared != nil {
		ok, err := rl.shared.AllowAction(ctx, key, action, rl.rps, rl.burst)
		if err == nil {
			return ok
		}
		slog.Warn("shared rate limiter unavailable, using local limiter", "error", err)
	}
	return rl.getLimiter(action + ":" + key).Allow()
}

// Cleanup drops local limiters idle for longer than maxIdle until ctx is done.
func (rl *RateLimiter) Cleanup(ctx context.Context, maxIdle time.Duration) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.prune(now, maxIdle)
			}
		}
	}()
}

func (rl *RateLimiter) prune(now time.Time, maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > maxIdle {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// RateLimitMiddleware limits requests per user, or per client IP for
// unauthenticated routes.
func RateLimitMiddleware(rl *RateLimiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if uid, ok := UserID(c); ok {
			key = uid.String()
		}

		if !rl.Allow(c.Request.Context(), key, action) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}
