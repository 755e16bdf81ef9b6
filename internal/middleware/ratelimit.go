package middleware

import (
	"net"
	"net/http"

	"github.com/mkravets/secretdrop/internal/ratelimit"
)

// WithRateLimit throttles requests per source address using the shared
// limiter. Meant for the reveal endpoint, where it caps password
// guessing; the key is the caller's network origin, not the secret id.
// Mount chi's RealIP middleware upstream so proxied requests are keyed
// by the originating client.
func WithRateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.IsLimited(sourceAddr(r)) {
				http.Error(w, "too many attempts, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sourceAddr strips the port from RemoteAddr so one client maps to one
// counter regardless of ephemeral ports.
func sourceAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
