package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitByIP throttles clients by remote address, allowing burst requests
// per window. Used on the unauthenticated auth endpoints.
func RateLimitByIP(burst int, window time.Duration) func(http.Handler) http.Handler {
	limiters := newIPLimiters(burst, window, time.Now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiters.allow(clientIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", formatSeconds(window))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests. Please try again later.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters holds one token bucket per client. A bucket idle for a whole
// window has refilled to burst, so it is dropped and recreated on demand.
type ipLimiters struct {
	mu        sync.Mutex
	burst     int
	window    time.Duration
	now       func() time.Time
	entries   map[string]*ipEntry
	lastSweep time.Time
}

func newIPLimiters(burst int, window time.Duration, now func() time.Time) *ipLimiters {
	return &ipLimiters{
		burst:     burst,
		window:    window,
		now:       now,
		entries:   make(map[string]*ipEntry),
		lastSweep: now(),
	}
}

func (l *ipLimiters) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) >= l.window {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.entries[key]
	if !ok {
		e = &ipEntry{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.burst)), l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}
