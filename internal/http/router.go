package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jscn-oa/console-sso/internal/config"
	ssofeature "github.com/jscn-oa/console-sso/internal/http/features/sso"
	"github.com/jscn-oa/console-sso/internal/http/middleware"
	"github.com/jscn-oa/console-sso/internal/httputil"
	"github.com/jscn-oa/console-sso/pkg/auth"
	"github.com/jscn-oa/console-sso/pkg/sso"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Verifier        *sso.Verifier
	AccountService  *sso.AccountService
	TokenService    *auth.TokenService
	ConsoleWebURL   string
	CookieConfig    httputil.CookieConfig
	RateLimit       config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Signed SSO entry point
	ssoHandler := ssofeature.NewHandler(
		cfg.Logger,
		cfg.Verifier,
		cfg.AccountService,
		cfg.TokenService,
		cfg.ConsoleWebURL,
		cfg.CookieConfig,
	)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, cfg.Logger))
		r.Get("/console/api/enterprise/sso/custom/login", ssoHandler.Login)
	})

	return r
}
