package server

import (
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// clientLimiter hands out one token bucket per client address. Buckets for
// clients that go quiet expire from the cache.
type clientLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *cache.Cache
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &clientLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: cache.New(10*time.Minute, 20*time.Minute),
	}
}

func (l *clientLimiter) allow(client string) bool {
	if v, ok := l.buckets.Get(client); ok {
		l.buckets.SetDefault(client, v)
		return v.(*rate.Limiter).Allow()
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	// Add fails if another request created the bucket first; use theirs.
	if err := l.buckets.Add(client, lim, cache.DefaultExpiration); err != nil {
		if v, ok := l.buckets.Get(client); ok {
			lim = v.(*rate.Limiter)
		}
	}
	return lim.Allow()
}

// clientKey identifies the caller. RealIP has already rewritten RemoteAddr
// when a proxy header is present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientKey(r)
		if !s.limiter.allow(client) {
			s.log.Debug("rate limited", zap.String("client", client), zap.String("path", r.URL.Path))
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
