package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Jayati0502/gfi-ikras-project/internal/logging"
)

// TestRateLimit_AllowsWithinBurst verifies requests inside the burst pass.
func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, func(cfg *Config) {
		cfg.RateLimit = 1
		cfg.RateBurst = 3
	})

	for i := 0; i < 3; i++ {
		w := postAnswer(s, `{"question":"q"}`)
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d within burst was rejected", i)
		}
	}
}

// TestRateLimit_RejectsBeyondBurst verifies a 429 with Retry-After once the
// bucket is drained.
func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, func(cfg *Config) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 2
	})

	postAnswer(s, `{"question":"q"}`)
	postAnswer(s, `{"question":"q"}`)
	w := postAnswer(s, `{"question":"q"}`)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 beyond burst, got %d", w.Code)
	}
	if ra := w.Header().Get("Retry-After"); ra == "" {
		t.Errorf("expected Retry-After header on 429")
	}
}

// TestRateLimit_PerIP verifies that one client's exhaustion does not affect
// another IP.
func TestRateLimit_PerIP(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, func(cfg *Config) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 1
	})

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/answer", strings.NewReader(`{"question":"q"}`))
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		return w.Code
	}

	if code := send("10.0.0.1:1234"); code == http.StatusTooManyRequests {
		t.Fatal("first request from first IP rejected")
	}
	if code := send("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatal("second request from first IP should be limited")
	}
	if code := send("10.0.0.2:5678"); code == http.StatusTooManyRequests {
		t.Error("fresh IP must have its own bucket")
	}
}

// TestRateLimit_HealthUnlimited verifies the probe endpoints bypass the
// limiter entirely.
func TestRateLimit_HealthUnlimited(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeAnswerer{}, func(cfg *Config) {
		cfg.RateLimit = 0.001
		cfg.RateBurst = 1
	})

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("health request %d: expected 200, got %d", i, w.Code)
		}
	}
}

// TestRateLimiter_Sweep verifies stale client buckets are removed.
func TestRateLimiter_Sweep(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(1, 1, logging.NewWithWriter(io.Discard))
	defer stop()

	rl.bucketFor("10.0.0.1")

	rl.mu.Lock()
	b := rl.clients["10.0.0.1"]
	b.seen = b.seen.Add(-10 * time.Minute)
	rl.mu.Unlock()

	rl.sweep()

	rl.mu.Lock()
	_, present := rl.clients["10.0.0.1"]
	rl.mu.Unlock()
	if present {
		t.Error("expected stale entry to be evicted")
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		want string
	}{
		{"10.0.0.1:1234", "10.0.0.1"},
		{"[::1]:8080", "[::1]"},
		{"noport", "noport"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.addr
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q): expected %q, got %q", tt.addr, tt.want, got)
		}
	}
}
