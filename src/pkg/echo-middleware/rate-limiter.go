package echomw

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rate.Limiter
	rateLimit rate.Limit // requests per second
	burst     int        // how many requests are allowed instantly
	forget    time.Duration
}

// NewRateLimiter creates a limiter; idle client buckets are dropped after a minute.
func NewRateLimiter(requestsPerSecond int, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*rate.Limiter),
		rateLimit: rate.Limit(requestsPerSecond),
		burst:     burst,
		forget:    time.Minute,
	}
}

// getLimiter returns the rate limiter for the given IP address.
func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.clients[ip]
	if !exists {
		limiter = rate.NewLimiter(l.rateLimit, l.burst)
		l.clients[ip] = limiter

		time.AfterFunc(l.forget, func() {
			l.mu.Lock()
			delete(l.clients, ip)
			l.mu.Unlock()
		})
	}
	return limiter
}

// Middleware rejects requests above the per-IP rate with 429.
func (l *RateLimiter) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		limiter := l.getLimiter(c.RealIP())
		if !limiter.Allow() {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "too many requests",
			})
		}
		return next(c)
	}
}
