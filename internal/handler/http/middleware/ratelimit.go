package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"golang.org/x/time/rate"
)

// idleAfter is how long an unused limiter is kept before it is dropped.
const idleAfter = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated user.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewRateLimiter allows perMinute requests per user with the given burst.
func NewRateLimiter(perMinute int, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		now:      time.Now,
	}
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > idleAfter {
			delete(l.visitors, k)
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Limit rejects a user's request with 429 once their bucket is empty. Must
// run after ResolveIdentity.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := identity.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !l.allow(id.UserID) {
			w.Header().Set("Retry-After", "60")
			response.TooManyRequests(w, "Too many requests, slow down")
			return
		}

		next.ServeHTTP(w, r)
	})
}
