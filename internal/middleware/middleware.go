// Package middleware wraps the HTTP surface with CORS headers and an
// optional per-second token-bucket rate limiter.
package middleware

import (
	"net/http"
	"sync"
	"time"
)

// TokenBucket is a coarse per-second limiter. Requests over the budget are
// dropped with 429; there is no queueing.
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := time.Now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Options configures Wrap.
type Options struct {
	CORSOrigins      string
	RateLimitEnabled bool
	RateLimitQPS     int
}

// Wrap applies CORS headers (and preflight short-circuit) and, when enabled,
// the rate limiter around next.
func Wrap(next http.Handler, opts Options) http.Handler {
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, x-admin-token")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
	if !opts.RateLimitEnabled {
		return h
	}
	qps := opts.RateLimitQPS
	if qps <= 0 {
		qps = 200
	}
	tb := &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix()}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		h.ServeHTTP(w, r)
	})
}
