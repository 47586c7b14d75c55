package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/go-chi/chi/middleware"
	"golang.org/x/time/rate"
)

const bucketTTL = 5 * time.Minute

var ErrRateLimited = &internal.AppError{
	Type:       internal.ErrorTypeForbidden,
	Code:       "RATE_LIMITED",
	Message:    "Too many requests",
	StatusCode: http.StatusTooManyRequests,
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter is a token bucket per client IP for unauthenticated endpoints.
// The client IP is the peer address; forwarding headers only count when
// trustProxy is set, i.e. the server sits behind a proxy that overwrites them.
type RateLimiter struct {
	perSecond  rate.Limit
	burst      int
	trustProxy bool
	now        func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewRateLimiter(perSecond float64, burst int, trustProxy bool) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		perSecond:  rate.Limit(perSecond),
		burst:      burst,
		trustProxy: trustProxy,
		now:        time.Now,
		buckets:    make(map[string]*bucket),
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, b := range rl.buckets {
		if now.Sub(b.seen) > bucketTTL {
			delete(rl.buckets, k)
		}
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.perSecond, rl.burst)}
		rl.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			status, body := ErrRateLimited.ToHTTPResponse()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
			return
		}
		next.ServeHTTP(w, r)
	})
	if rl.trustProxy {
		return middleware.RealIP(h)
	}
	return h
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
