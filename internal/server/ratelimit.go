package server

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

const (
	// defaultRateLimit is the sustained requests/second allowed per client IP
	// on the answer endpoint when no explicit limit is configured.
	defaultRateLimit = 10
	// defaultRateBurst allows short spikes without immediate rejection.
	defaultRateBurst = 20

	// sweepInterval is how often stale client buckets are reaped.
	sweepInterval = time.Minute
	// staleAfter is how long a client may be idle before its bucket is dropped.
	staleAfter = 5 * time.Minute
)

// clientBucket pairs a token bucket with the last time its IP was seen, so
// idle clients can be reaped and the map stays bounded.
type clientBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// rateLimiter enforces a per-IP token-bucket limit on the endpoints it wraps.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
	log     *slog.Logger
}

// newRateLimiter builds a rateLimiter and starts its background sweeper.
// Calling the returned stop function ends the sweeper goroutine.
func newRateLimiter(rps float64, burst int, log *slog.Logger) (*rateLimiter, func()) {
	rl := &rateLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		log:     log,
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				rl.sweep()
			}
		}
	}()

	return rl, func() { close(done) }
}

// bucketFor returns the token bucket for ip, creating it on first sight and
// refreshing its idle timer.
func (rl *rateLimiter) bucketFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[ip]
	if !ok {
		b = &clientBucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = b
	}
	b.seen = time.Now()
	return b.lim
}

// sweep drops buckets for clients idle longer than staleAfter.
func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	for ip, b := range rl.clients {
		if b.seen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// middleware rejects requests over the per-IP limit with 429 and a
// Retry-After header, logging a WARN for the operator.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.bucketFor(ip).Allow() {
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. X-Forwarded-For is deliberately
// ignored: the service is deployed on the support team's internal network
// with no trusted proxy in front of it.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[:i]
	}
	return addr
}
