package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	applog "nutricalc/internal/log"
)

// clientLimiter hands out one token bucket per client address. Buckets live
// in a bounded LRU cache so a flood of distinct addresses cannot grow memory
// without limit; an evicted client simply starts with a full bucket.
type clientLimiter struct {
	mu      sync.Mutex
	clients *lru.Cache
	limit   rate.Limit
	burst   int
}

func newClientLimiter(perSecond float64, burst, size int) (*clientLimiter, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &clientLimiter{
		clients: cache,
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}, nil
}

func (l *clientLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.clients.Get(key); ok {
		return cached.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.clients.Add(key, limiter)
	return limiter
}

func (l *clientLimiter) allow(key string) bool {
	return l.limiterFor(key).Allow()
}

func (l *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddress(r)
		if !l.allow(client) {
			rateLimitRejects.Inc()
			applog.Warn(r.Context(), "auth rate limit exceeded", "client", client, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		next.ServeHTTP(w, r)
	})
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		applog.Debug(r.Context(), "unparseable remote address", "remoteAddr", r.RemoteAddr)
		return r.RemoteAddr
	}
	return host
}
