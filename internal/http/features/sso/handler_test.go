package sso

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jscn-oa/console-sso/internal/httputil"
	"github.com/jscn-oa/console-sso/pkg/auth"
	"github.com/jscn-oa/console-sso/pkg/domain"
	ssoservice "github.com/jscn-oa/console-sso/pkg/sso"
)

const (
	testSecret     = "test-secret"
	testConsoleURL = "http://console.local"
)

type stubProvisioner struct {
	account  *domain.Account
	err      error
	username string
	nickname string
	clientIP string
}

func (s *stubProvisioner) GetOrCreateAccount(ctx context.Context, username, nickname, clientIP string) (*domain.Account, error) {
	s.username = username
	s.nickname = nickname
	s.clientIP = clientIP
	return s.account, s.err
}

type stubIssuer struct {
	triple *auth.TokenTriple
	err    error
}

func (s *stubIssuer) Issue(account *domain.Account) (*auth.TokenTriple, error) {
	return s.triple, s.err
}

func (s *stubIssuer) AccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (s *stubIssuer) RefreshTokenTTL() time.Duration { return 7 * 24 * time.Hour }

func newTestHandler(accounts AccountProvisioner, tokens TokenIssuer) *Handler {
	return NewHandler(
		slog.Default(),
		ssoservice.NewVerifier(testSecret, 5*time.Minute),
		accounts,
		tokens,
		testConsoleURL,
		httputil.DefaultCookieConfig(),
	)
}

func signedQuery(params map[string]string) string {
	v := ssoservice.NewVerifier(testSecret, 5*time.Minute)
	q := url.Values{}
	for key, value := range params {
		q.Set(key, value)
	}
	q.Set("sign", v.Sign(params))
	return q.Encode()
}

func TestLogin_ParameterValidation(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "missing username",
			query:          "sign=ABC",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "missing required parameters",
		},
		{
			name:           "missing sign",
			query:          "username=e1001",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "missing required parameters",
		},
		{
			name:           "non-numeric timestamp",
			query:          "username=e1001&sign=ABC&timestamp=yesterday",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid timestamp",
		},
		{
			name: "stale timestamp",
			query: fmt.Sprintf("username=e1001&sign=ABC&timestamp=%d",
				time.Now().Add(-10*time.Minute).UnixMilli()),
			expectedStatus: http.StatusForbidden,
			expectedError:  "request expired",
		},
		{
			name: "invalid signature",
			query: fmt.Sprintf("username=e1001&sign=0000&timestamp=%d",
				time.Now().UnixMilli()),
			expectedStatus: http.StatusForbidden,
			expectedError:  "invalid sign",
		},
	}

	// Validation fails before any collaborator is touched.
	handler := newTestHandler(nil, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/console/api/enterprise/sso/custom/login?"+tt.query, nil)
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("Status code = %d, want %d", rec.Code, tt.expectedStatus)
			}

			var response map[string]string
			json.NewDecoder(rec.Body).Decode(&response)
			if response["error"] != tt.expectedError {
				t.Errorf("Error = %q, want %q", response["error"], tt.expectedError)
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	tenantID := uuid.New()
	provisioner := &stubProvisioner{
		account: &domain.Account{
			ID:              uuid.New(),
			Email:           "e1001@jscn.oa",
			Name:            "Wang Wei",
			Status:          domain.AccountStatusActive,
			CurrentTenantID: &tenantID,
		},
	}
	issuer := &stubIssuer{
		triple: &auth.TokenTriple{
			AccessToken:  "access",
			RefreshToken: "refresh",
			CSRFToken:    "csrf",
		},
	}
	handler := newTestHandler(provisioner, issuer)

	query := signedQuery(map[string]string{
		"username":  "e1001",
		"nickname":  "Wang Wei",
		"timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
	})
	req := httptest.NewRequest(http.MethodGet, "/console/api/enterprise/sso/custom/login?"+query, nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("Status code = %d, want %d (body: %s)", rec.Code, http.StatusFound, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != testConsoleURL {
		t.Errorf("Location = %q, want %q", loc, testConsoleURL)
	}

	if provisioner.username != "e1001" {
		t.Errorf("username = %q, want %q", provisioner.username, "e1001")
	}
	if provisioner.nickname != "Wang Wei" {
		t.Errorf("nickname = %q, want %q", provisioner.nickname, "Wang Wei")
	}
	if provisioner.clientIP != "203.0.113.7" {
		t.Errorf("clientIP = %q, want %q", provisioner.clientIP, "203.0.113.7")
	}

	cookies := rec.Result().Cookies()
	byName := make(map[string]*http.Cookie, len(cookies))
	for _, c := range cookies {
		byName[c.Name] = c
	}

	access, ok := byName[httputil.AccessTokenCookie]
	if !ok || access.Value != "access" {
		t.Errorf("access_token cookie = %v, want value %q", access, "access")
	}
	if ok && !access.HttpOnly {
		t.Error("access_token cookie must be HttpOnly")
	}
	refresh, ok := byName[httputil.RefreshTokenCookie]
	if !ok || refresh.Value != "refresh" {
		t.Errorf("refresh_token cookie = %v, want value %q", refresh, "refresh")
	}
	csrf, ok := byName[httputil.CSRFTokenCookie]
	if !ok || csrf.Value != "csrf" {
		t.Errorf("csrf_token cookie = %v, want value %q", csrf, "csrf")
	}
	if ok && csrf.HttpOnly {
		t.Error("csrf_token cookie must be readable by the frontend")
	}
}

func TestLogin_DefaultNickname(t *testing.T) {
	tenantID := uuid.New()
	provisioner := &stubProvisioner{
		account: &domain.Account{
			ID:              uuid.New(),
			Email:           "e1001@jscn.oa",
			Name:            "User",
			Status:          domain.AccountStatusActive,
			CurrentTenantID: &tenantID,
		},
	}
	issuer := &stubIssuer{triple: &auth.TokenTriple{AccessToken: "a", RefreshToken: "r", CSRFToken: "c"}}
	handler := newTestHandler(provisioner, issuer)

	query := signedQuery(map[string]string{"username": "e1001"})
	req := httptest.NewRequest(http.MethodGet, "/console/api/enterprise/sso/custom/login?"+query, nil)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("Status code = %d, want %d", rec.Code, http.StatusFound)
	}
	if provisioner.nickname != "User" {
		t.Errorf("nickname = %q, want default %q", provisioner.nickname, "User")
	}
}

func TestLogin_MissingTimestampSkipsFreshness(t *testing.T) {
	tenantID := uuid.New()
	provisioner := &stubProvisioner{
		account: &domain.Account{
			ID:              uuid.New(),
			Email:           "e1001@jscn.oa",
			Name:            "Wang Wei",
			Status:          domain.AccountStatusActive,
			CurrentTenantID: &tenantID,
		},
	}
	issuer := &stubIssuer{triple: &auth.TokenTriple{AccessToken: "a", RefreshToken: "r", CSRFToken: "c"}}
	handler := newTestHandler(provisioner, issuer)

	query := signedQuery(map[string]string{"username": "e1001", "nickname": "Wang Wei"})
	req := httptest.NewRequest(http.MethodGet, "/console/api/enterprise/sso/custom/login?"+query, nil)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusFound {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusFound)
	}
}

func TestLogin_ReconciliationFailure(t *testing.T) {
	provisioner := &stubProvisioner{err: errors.New("db down")}
	handler := newTestHandler(provisioner, &stubIssuer{})

	query := signedQuery(map[string]string{
		"username":  "e1001",
		"timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
	})
	req := httptest.NewRequest(http.MethodGet, "/console/api/enterprise/sso/custom/login?"+query, nil)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
