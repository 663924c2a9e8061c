package middleware

import (
	"net/http"
	"sync/atomic"

	"triptailor-backend/pkg/api"

	"golang.org/x/time/rate"
)

// RateLimiter is a shared token bucket whose rate can be changed while it
// serves requests.
type RateLimiter struct {
	limiter atomic.Pointer[rate.Limiter]
}

// NewRateLimiter allows rps requests per second with the given burst. A
// non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	l := &RateLimiter{}
	l.Update(rps, burst)
	return l
}

// Update replaces the rate and burst. The bucket starts full again.
func (l *RateLimiter) Update(rps float64, burst int) {
	if rps <= 0 {
		l.limiter.Store(nil)
		return
	}
	if burst <= 0 {
		burst = 1
	}
	l.limiter.Store(rate.NewLimiter(rate.Limit(rps), burst))
}

// Handler rejects requests over the limit with 429.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lim := l.limiter.Load(); lim != nil && !lim.Allow() {
			w.Header().Set("Retry-After", "1")
			api.Error(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit is a fixed-rate RateLimiter middleware.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	return NewRateLimiter(rps, burst).Handler
}
