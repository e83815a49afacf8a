package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mentorhub/interviews/internal/config"
)

// RateLimiter implements a simple per-IP fixed window limiter
type RateLimiter struct {
	enabled  bool
	requests int
	duration time.Duration
	visitors map[string]*visitor
	mu       sync.Mutex
	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	windowStart time.Time
	lastSeen    time.Time
	tokens      int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		enabled:  cfg.Enabled,
		requests: cfg.Requests,
		duration: cfg.Duration,
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
	}

	if rl.enabled {
		go rl.cleanupVisitors(time.Minute)
	}

	return rl
}

// Stop ends the background cleanup
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Limit rate limits requests based on IP address
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled || rl.allow(ClientIP(r), time.Now()) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Retry-After", retryAfter(rl.duration))
		respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.windowStart) >= rl.duration {
		rl.visitors[ip] = &visitor{windowStart: now, lastSeen: now, tokens: rl.requests - 1}
		return rl.requests > 0
	}

	v.lastSeen = now
	if v.tokens > 0 {
		v.tokens--
		return true
	}
	return false
}

// cleanupVisitors removes old visitors from the map
func (rl *RateLimiter) cleanupVisitors(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > 3*rl.duration {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func retryAfter(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
