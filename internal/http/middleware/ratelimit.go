package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/httprate"
	"github.com/jscn-oa/console-sso/internal/config"
	"github.com/jscn-oa/console-sso/internal/httputil"
)

// RateLimit creates an IP-based rate limiter middleware with logging.
// Returns a no-op middleware when rate limiting is disabled.
func RateLimit(cfg config.RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if logger != nil {
				logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
					"user_agent", r.UserAgent(),
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}
