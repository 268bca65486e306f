package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/baharkarakas/qa-forum/internal/api/httpx"
	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/metrics"
	"github.com/baharkarakas/qa-forum/internal/ratelimit"
)

const bucketIdleTTL = 5 * time.Minute

type tokenBucket struct {
	tokens float64
	last   time.Time
}

// ipBuckets keeps one token bucket per client address.
type ipBuckets struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64
	burst   float64
	swept   time.Time
	now     func() time.Time
}

func newIPBuckets(rps int) *ipBuckets {
	return &ipBuckets{
		buckets: make(map[string]*tokenBucket),
		rate:    float64(rps),
		burst:   float64(rps),
		now:     time.Now,
	}
}

func (b *ipBuckets) allow(ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if now.Sub(b.swept) > bucketIdleTTL {
		for k, tb := range b.buckets {
			if now.Sub(tb.last) > bucketIdleTTL {
				delete(b.buckets, k)
			}
		}
		b.swept = now
	}

	tb, ok := b.buckets[ip]
	if !ok {
		tb = &tokenBucket{tokens: b.burst, last: now}
		b.buckets[ip] = tb
	}
	if elapsed := now.Sub(tb.last).Seconds(); elapsed > 0 {
		tb.tokens = math.Min(b.burst, tb.tokens+elapsed*b.rate)
		tb.last = now
	}
	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

// RateLimit allows rps requests per second per client IP, with a burst of
// the same size. rps <= 0 disables it.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	b := newIPBuckets(rps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !b.allow(clientIP(r)) {
				metrics.RateLimitedTotal.WithLabelValues("global").Inc()
				w.Header().Set("Retry-After", "1")
				httpx.WriteAppError(w, r, apperr.New(apperr.RateLimited, "too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Throttle guards a route with a shared Redis limiter keyed by client IP.
// When Redis is unreachable the request is let through.
func Throttle(l *ratelimit.Limiter, name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				slog.Warn("rate limiter unavailable",
					slog.String("limiter", name),
					slog.Any("err", err),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !d.Allowed {
				metrics.RateLimitedTotal.WithLabelValues(name).Inc()
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				httpx.WriteAppError(w, r, apperr.New(apperr.RateLimited, "too many attempts, try again later"))
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP to have normalized RemoteAddr already.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
