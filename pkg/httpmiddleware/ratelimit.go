package httpmiddleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the fixed-window rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window and key.
	Max int
	// Window is the window duration.
	Window time.Duration
	// KeyFunc extracts the limiting key from a request. Defaults to the
	// client IP.
	KeyFunc func(*http.Request) string
}

type window struct {
	start time.Time
	count int
}

type rateLimiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	windows map[string]*window
}

// allow reports whether the request for key fits the current window, and how
// many requests remain in it.
func (rl *rateLimiter) allow(key string, now time.Time) (remaining int, resetAt time.Time, allowed bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.cfg.Window {
		w = &window{start: now}
		rl.windows[key] = w

		// Opportunistic eviction keeps the map from growing unbounded.
		for k, old := range rl.windows {
			if now.Sub(old.start) >= 2*rl.cfg.Window {
				delete(rl.windows, k)
			}
		}
	}

	resetAt = w.start.Add(rl.cfg.Window)
	if w.count >= rl.cfg.Max {
		return 0, resetAt, false
	}
	w.count++
	return rl.cfg.Max - w.count, resetAt, true
}

// RateLimit returns a middleware enforcing a per-key request limit per
// window. Over-limit requests get 429 with a JSON body and the standard
// X-RateLimit headers.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	rl := &rateLimiter{cfg: cfg, windows: make(map[string]*window)}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, allowed := rl.allow(cfg.KeyFunc(r), time.Now())

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    "rate_limited",
					"message": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller's address, honouring the usual proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
