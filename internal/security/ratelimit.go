package security

import (
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a per-client fixed-window limiter used on the scope
// selection and report notification endpoints.
type RateLimiter struct {
	clients map[string]*client
	mu      sync.RWMutex
	rate    int           // requests per window
	window  time.Duration // time window
}

type client struct {
	remaining  int
	windowFrom time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter allowing rate requests per
// window per client.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		rate:    rate,
		window:  window,
	}
	go rl.cleanup()
	return rl
}

// Allow checks if a request from an IP should be allowed
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	c, exists := rl.clients[ip]
	if !exists {
		c = &client{
			remaining:  rl.rate,
			windowFrom: time.Now(),
		}
		rl.clients[ip] = c
	}
	rl.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.windowFrom) >= rl.window {
		c.remaining = rl.rate
		c.windowFrom = now
	}

	if c.remaining > 0 {
		c.remaining--
		return true
	}
	return false
}

// cleanup drops clients that have been idle for two full windows.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, c := range rl.clients {
			c.mu.Lock()
			if now.Sub(c.windowFrom) > rl.window*2 {
				delete(rl.clients, ip)
			}
			c.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

// GetClientIP extracts the client IP from the request
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (when behind proxy)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}

	// Check X-Real-IP header
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return r.RemoteAddr
}
