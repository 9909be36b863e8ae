package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gameshelfapp/gameshelf-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a rate limiter allowing rps requests per second
// per key with the given burst size.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return ratelimit.New(rps, burst)
}

// feedRateLimit is a huma middleware that rate limits feed submissions by
// client IP. Returns 429 Too Many Requests when the limit is exceeded.
// A nil limiter disables the check.
func (s *Server) feedRateLimit(ctx huma.Context, next func(huma.Context)) {
	if s.feedRateLimiter == nil {
		next(ctx)
		return
	}

	// RealIP middleware has already resolved forwarding headers, so the
	// remote address is the client address.
	key := clientIP(ctx.RemoteAddr())

	if !s.feedRateLimiter.Allow(key) {
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	next(ctx)
}

// clientIP strips the port from a host:port remote address.
func clientIP(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
	}
	return addr
}
