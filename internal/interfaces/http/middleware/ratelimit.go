package middleware

import (
	"net/http"
	"sync"
	"time"
)

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int

	// KeyFunc extracts the bucket key; defaults to client IP.
	KeyFunc func(r *http.Request) string

	// SkipPaths bypass limiting.
	SkipPaths []string
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		SkipPaths:         []string{"/healthz", "/readyz", "/metrics"},
	}
}

func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateLimit rejects requests above the configured rate with 429.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientKey
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	var mu sync.Mutex
	buckets := make(map[string]*bucket)

	allow := func(key string) bool {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{tokens: float64(cfg.BurstSize), lastRefill: now}
			buckets[key] = b
		}

		b.tokens += now.Sub(b.lastRefill).Seconds() * cfg.RequestsPerSecond
		if b.tokens > float64(cfg.BurstSize) {
			b.tokens = float64(cfg.BurstSize)
		}
		b.lastRefill = now

		if b.tokens < 1 {
			return false
		}
		b.tokens--
		return true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] || allow(cfg.KeyFunc(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		})
	}
}
