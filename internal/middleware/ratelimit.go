package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter    *rate.Limiter
	lastActive time.Time
}

// RateLimiter throttles inbound requests per client IP: at most limit requests
// per window, refilled evenly.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	interval time.Duration
	burst    int
	idle     time.Duration
	now      func() time.Time
}

func NewRateLimiter(window time.Duration, limit int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		interval: window / time.Duration(limit),
		burst:    limit,
		idle:     2 * window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rate.Every(rl.interval), rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastActive = rl.now()
	return l.limiter
}

// Evict drops limiters that have not seen a request for two windows.
func (rl *RateLimiter) Evict() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	evicted := 0
	now := rl.now()
	for ip, l := range rl.limiters {
		if now.Sub(l.lastActive) > rl.idle {
			delete(rl.limiters, ip)
			evicted++
		}
	}
	return evicted
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rl.interval.Seconds()))))
			gecho.NewErr(w).WithStatus(http.StatusTooManyRequests).WithMessage("Too many requests, please try again later").Send()
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
