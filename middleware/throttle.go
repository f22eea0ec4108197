package middleware

import (
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// throttleIdleTTL is how long a client entry may sit unused before the next
// sweep drops it, bounding the map on long-running deployments.
const throttleIdleTTL = 10 * time.Minute

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle applies a per-client token bucket to sensitive endpoints.
type Throttle struct {
	mu        sync.Mutex
	clients   map[string]*throttleEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

// NewThrottle creates a Throttle allowing limit events with the given burst
// per client.
func NewThrottle(limit rate.Limit, burst int) *Throttle {
	return &Throttle{
		clients:   make(map[string]*throttleEntry),
		limit:     limit,
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (t *Throttle) limiterFor(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if now.Sub(t.lastSweep) >= throttleIdleTTL {
		for client, entry := range t.clients {
			if now.Sub(entry.lastSeen) >= throttleIdleTTL {
				delete(t.clients, client)
			}
		}
		t.lastSweep = now
	}

	entry, ok := t.clients[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Middleware rejects requests over the client's budget with 429.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !t.limiterFor(host).Allow() {
			log.Printf("⚠️ Throttled %s %s from %s", r.Method, r.URL.Path, host)
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
