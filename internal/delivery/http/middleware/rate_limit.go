package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront-backend/pkg/utils"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit  rate.Limit
	burst  int
	exempt []string

	sweepEvery time.Duration
	idleTTL    time.Duration
	cancel     context.CancelFunc
}

// NewRateLimiter starts the idle-visitor sweeper; it runs until ctx is done
// or Shutdown is called. Paths under an exempt prefix (health probes, image
// files) bypass the limiter.
func NewRateLimiter(ctx context.Context, limit rate.Limit, burst int, sweepEvery, idleTTL time.Duration, exempt ...string) *RateLimiter {
	rl := &RateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      limit,
		burst:      burst,
		exempt:     exempt,
		sweepEvery: sweepEvery,
		idleTTL:    idleTTL,
	}
	ctx, rl.cancel = context.WithCancel(ctx)
	go rl.sweepLoop(ctx)
	return rl
}

func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.isExempt(r.URL.Path) || rl.allow(getClientIP(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", "1")
			utils.WriteError(w, http.StatusTooManyRequests, "too many requests")
		})
	}
}

func (rl *RateLimiter) isExempt(path string) bool {
	for _, p := range rl.exempt {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (rl *RateLimiter) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(rl.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-ctx.Done():
			return
		}
	}
}

// sweep forgets visitors idle longer than idleTTL. A returning client starts
// with a full bucket.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) Shutdown() {
	rl.cancel()
}
