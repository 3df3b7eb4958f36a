package middleware

import (
	"net/http"
	"sync"
	"time"

	"cashdesk/internal/apierror"

	"github.com/gin-gonic/gin"
)

// ipLimiter is a fixed-window counter per client IP. Each middleware instance
// owns its map, so the login limiter and the general limiter never share
// state. A janitor goroutine drops idle IPs.
type ipLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*ipWindow
}

type ipWindow struct {
	count   int
	resetAt time.Time
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	l := &ipLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*ipWindow),
	}
	go l.janitor()
	return l
}

// take records one request for ip and reports whether it is still under the
// limit, along with when the current window resets.
func (l *ipLimiter) take(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[ip]
	if !ok || now.After(w.resetAt) {
		w = &ipWindow{resetAt: now.Add(l.window)}
		l.windows[ip] = w
	}
	w.count++
	return w.count <= l.limit, w.resetAt
}

func (l *ipLimiter) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		for ip, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, ip)
			}
		}
		l.mu.Unlock()
	}
}

func (l *ipLimiter) middleware(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, resetAt := l.take(c.ClientIP())
		if !allowed {
			c.Header("Retry-After", resetAt.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter caps credential attempts at 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newIPLimiter(20, time.Minute).middleware("Too many login attempts. Try again in a minute.")
}

// RateLimiter is the general API limiter applied to the whole router.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter(limit, window).middleware("Too many requests. Try again shortly.")
}
