package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware handles CORS for the comparison frontend
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		if isAllowedOrigin(origin, allowedOrigins) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		}

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		// Support wildcard suffix matching, e.g. "http://localhost:*"
		if strings.HasSuffix(allowed, "*") {
			prefix := strings.TrimSuffix(allowed, "*")
			if strings.HasPrefix(origin, prefix) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

// IPRateLimiter limits requests per client IP over a sliding window.
// Scraping fan-out is expensive, so the API keeps per-client request
// volume modest.
type IPRateLimiter struct {
	mu       sync.Mutex
	requests map[string]*requestWindow
	limit    int
	window   time.Duration
}

type requestWindow struct {
	count   int
	firstAt time.Time
}

// NewIPRateLimiter creates a limiter allowing limit requests per window
// per IP. Non-positive values select 60 requests per minute.
func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	rl := &IPRateLimiter{
		requests: make(map[string]*requestWindow),
		limit:    limit,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether the IP may make another request.
func (r *IPRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	info, exists := r.requests[ip]
	if !exists || now.Sub(info.firstAt) > r.window {
		r.requests[ip] = &requestWindow{count: 1, firstAt: now}
		return true
	}

	if info.count >= r.limit {
		return false
	}
	info.count++
	return true
}

func (r *IPRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		r.mu.Lock()
		now := time.Now()
		for ip, info := range r.requests {
			if now.Sub(info.firstAt) > r.window {
				delete(r.requests, ip)
			}
		}
		r.mu.Unlock()
	}
}

// RateLimitMiddleware rejects requests over the per-IP budget with 429.
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

// LoggerMiddleware logs requests (simple version for now)
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
