package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

type rateLimiter interface {
	Allow() bool
}

// tokenBucket adapts x/time/rate to the rateLimiter interface.
type tokenBucket struct {
	bucket *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &tokenBucket{
		bucket: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

func (t *tokenBucket) Allow() bool {
	if t == nil || t.bucket == nil {
		return true
	}
	return t.bucket.Allow()
}

// rateLimitMiddleware throttles call placement. Only POST /start_call spends
// tokens: it is the sole endpoint that reaches the conversation engine and
// the carrier, while health and catalogue reads stay local and cheap.
func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/start_call" {
			next.ServeHTTP(w, r)
			return
		}
		if limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many requests", "call placement rate exceeded, retry shortly")
	})
}
