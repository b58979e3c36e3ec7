package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
)

// DefaultLimiterTTL is how long an idle client keeps its bucket
const DefaultLimiterTTL = 5 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than the TTL are dropped by a background sweep.
type RateLimiter struct {
	mu    sync.Mutex
	ips   map[string]*limiterEntry
	rate  rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// NewRateLimiter allows rps requests per second per client with the given
// burst. A ttl of zero or less uses DefaultLimiterTTL.
func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	if ttl <= 0 {
		ttl = DefaultLimiterTTL
	}
	rl := &RateLimiter{
		ips:   make(map[string]*limiterEntry),
		rate:  rate.Limit(rps),
		burst: burst,
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}

	// Periodic cleanup of stale entries to avoid unbounded map growth
	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.evictStale()
			case <-rl.done:
				return
			}
		}
	}()

	return rl
}

// GetLimiter returns the bucket for ip, creating it on first use
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.ips[ip]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = rl.now()
	return entry.limiter
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.ips)
}

// Close stops the background sweep
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) evictStale() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	evicted := 0
	for ip, e := range rl.ips {
		if now.Sub(e.lastSeen) > rl.ttl {
			delete(rl.ips, ip)
			evicted++
		}
	}
	return evicted
}

// Middleware rejects requests over the limit with 429
func (rl *RateLimiter) Middleware(m *metrics.AppMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.GetLimiter(clientIP(r)).Allow() {
				m.RateLimited.Add(r.Context(), 1, metric.WithAttributes(m.WithServiceName([]attribute.KeyValue{})...))
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
