package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"flock/pkg/metrics"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

type RateLimitConfig struct {
	RPS             float64
	Burst           int
	CleanupInterval time.Duration
	MaxAge          time.Duration
}

func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RPS:             10.0,
		Burst:           20,
		CleanupInterval: 5 * time.Minute,
		MaxAge:          10 * time.Minute,
	}
}

// IPLimiter keeps one token bucket per client IP.
type IPLimiter struct {
	config   RateLimitConfig
	mu       sync.RWMutex
	limiters map[string]*limiterEntry
	now      func() time.Time
}

func NewIPLimiter(config RateLimitConfig) *IPLimiter {
	return &IPLimiter{
		config:   config,
		limiters: make(map[string]*limiterEntry),
		now:      time.Now,
	}
}

func (l *IPLimiter) entry(key string) *limiterEntry {
	l.mu.RLock()
	e, exists := l.limiters[key]
	l.mu.RUnlock()
	if exists {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	e, exists = l.limiters[key]
	if !exists {
		e = &limiterEntry{
			limiter:  rate.NewLimiter(rate.Limit(l.config.RPS), l.config.Burst),
			lastSeen: l.now(),
		}
		l.limiters[key] = e
	}
	return e
}

// Allow consumes one token for key and returns the tokens left.
func (l *IPLimiter) Allow(key string) (bool, int) {
	e := l.entry(key)

	e.mu.Lock()
	e.lastSeen = l.now()
	e.mu.Unlock()

	if !e.limiter.Allow() {
		return false, 0
	}
	remaining := int(e.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining
}

// Cleanup drops limiters idle for longer than MaxAge.
func (l *IPLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.limiters {
		e.mu.Lock()
		lastSeen := e.lastSeen
		e.mu.Unlock()
		if now.Sub(lastSeen) > l.config.MaxAge {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// RunCleanup evicts idle limiters every CleanupInterval until ctx is done.
func (l *IPLimiter) RunCleanup(ctx context.Context) {
	if l.config.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

func (l *IPLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.RemoteIP()
		}

		allowed, remaining := l.Allow(clientIP)
		c.Header("X-RateLimit-Limit", formatRate(l.config.RPS))

		if !allowed {
			metrics.RateLimitRequestsTotal.WithLabelValues("limited").Inc()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "rate limit exceeded",
				"error_code": "RATE_LIMIT_EXCEEDED",
			})
			return
		}

		metrics.RateLimitRequestsTotal.WithLabelValues("allowed").Inc()
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

// RateLimitMiddleware builds a limiter whose cleanup loop stops with ctx.
func RateLimitMiddleware(ctx context.Context, config RateLimitConfig) gin.HandlerFunc {
	limiter := NewIPLimiter(config)
	go limiter.RunCleanup(ctx)
	return limiter.Middleware()
}

func formatRate(rps float64) string {
	return strconv.Itoa(int(rps))
}
