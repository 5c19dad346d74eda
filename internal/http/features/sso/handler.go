package sso

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jscn-oa/console-sso/internal/httputil"
	"github.com/jscn-oa/console-sso/pkg/auth"
	"github.com/jscn-oa/console-sso/pkg/domain"
	ssoservice "github.com/jscn-oa/console-sso/pkg/sso"
)

// defaultNickname is used when the identity source sends no display name.
const defaultNickname = "User"

// AccountProvisioner resolves a verified external identity to a local account.
type AccountProvisioner interface {
	GetOrCreateAccount(ctx context.Context, username, nickname, clientIP string) (*domain.Account, error)
}

// TokenIssuer produces the credential triple for an account.
type TokenIssuer interface {
	Issue(account *domain.Account) (*auth.TokenTriple, error)
	AccessTokenTTL() time.Duration
	RefreshTokenTTL() time.Duration
}

// Handler handles the custom SSO login endpoint.
type Handler struct {
	logger        *slog.Logger
	verifier      *ssoservice.Verifier
	accounts      AccountProvisioner
	tokens        TokenIssuer
	consoleWebURL string
	cookies       httputil.CookieConfig
}

// NewHandler creates a new SSO handler.
func NewHandler(
	logger *slog.Logger,
	verifier *ssoservice.Verifier,
	accounts AccountProvisioner,
	tokens TokenIssuer,
	consoleWebURL string,
	cookies httputil.CookieConfig,
) *Handler {
	return &Handler{
		logger:        logger,
		verifier:      verifier,
		accounts:      accounts,
		tokens:        tokens,
		consoleWebURL: consoleWebURL,
		cookies:       cookies,
	}
}

// Login handles the signed SSO login request.
// GET /console/api/enterprise/sso/custom/login?username=...&nickname=...&sign=...&timestamp=...
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	username := query.Get("username")
	sign := query.Get("sign")
	if username == "" || sign == "" {
		httputil.Error(w, http.StatusBadRequest, domain.ErrMissingParameter.Error())
		return
	}

	nickname := query.Get("nickname")
	if nickname == "" {
		nickname = defaultNickname
	}

	// A request without a timestamp is verified by signature alone; the
	// identity source predates the freshness field.
	if ts := query.Get("timestamp"); ts != "" {
		millis, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			httputil.Error(w, http.StatusBadRequest, domain.ErrInvalidTimestamp.Error())
			return
		}
		if !h.verifier.Fresh(millis) {
			httputil.Error(w, http.StatusForbidden, domain.ErrExpiredRequest.Error())
			return
		}
	}

	params := make(map[string]string, len(query))
	for key, values := range query {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}
	if !h.verifier.Verify(params, sign) {
		h.logger.Warn("rejected sso request with invalid signature", "username", username)
		httputil.Error(w, http.StatusForbidden, domain.ErrInvalidSignature.Error())
		return
	}

	clientIP := httputil.RemoteIP(r)

	account, err := h.accounts.GetOrCreateAccount(r.Context(), username, nickname, clientIP)
	if err != nil {
		h.logger.Error("sso account reconciliation failed", "username", username, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "sso login failed")
		return
	}

	tokens, err := h.tokens.Issue(account)
	if err != nil {
		h.logger.Error("failed to issue tokens", "account_id", account.ID, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "sso login failed")
		return
	}

	httputil.SetSessionCookies(w,
		tokens.AccessToken, tokens.RefreshToken, tokens.CSRFToken,
		h.tokens.AccessTokenTTL(), h.tokens.RefreshTokenTTL(),
		h.cookies,
	)

	h.logger.Info("sso login succeeded", "email", account.Email, "ip", clientIP)
	http.Redirect(w, r, h.consoleWebURL, http.StatusFound)
}
