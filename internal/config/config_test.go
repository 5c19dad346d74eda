package config

import (
	"os"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	os.Setenv("SSO_SECRET_KEY", "test-sso-secret")
	os.Setenv("JWT_SECRET", "test-jwt-secret")
	t.Cleanup(func() {
		os.Unsetenv("SSO_SECRET_KEY")
		os.Unsetenv("JWT_SECRET")
	})
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	// Clear any other env vars that might interfere
	envVars := []string{
		"SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "SSO_EMAIL_DOMAIN",
		"SSO_REPLAY_WINDOW", "CONSOLE_WEB_URL", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Check defaults
	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.SSOEmailDomain != "jscn.oa" {
		t.Errorf("SSOEmailDomain = %q, want %q", cfg.SSOEmailDomain, "jscn.oa")
	}
	if cfg.ReplayWindow != 5*time.Minute {
		t.Errorf("ReplayWindow = %v, want %v", cfg.ReplayWindow, 5*time.Minute)
	}
	if cfg.ConsoleWebURL != "http://localhost:3000" {
		t.Errorf("ConsoleWebURL = %q, want %q", cfg.ConsoleWebURL, "http://localhost:3000")
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 15*time.Minute)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %v, want %v", cfg.RefreshTokenTTL, 7*24*time.Hour)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled should default to true")
	}
}

func TestLoad_RequiredSSOSecretKey(t *testing.T) {
	os.Unsetenv("SSO_SECRET_KEY")
	os.Setenv("JWT_SECRET", "test-jwt-secret")
	defer os.Unsetenv("JWT_SECRET")

	if _, err := Load(); err == nil {
		t.Error("Load should fail when SSO_SECRET_KEY is not set")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	os.Setenv("SSO_SECRET_KEY", "test-sso-secret")
	defer os.Unsetenv("SSO_SECRET_KEY")
	os.Unsetenv("JWT_SECRET")

	if _, err := Load(); err == nil {
		t.Error("Load should fail when JWT_SECRET is not set")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("SSO_EMAIL_DOMAIN", "corp.example")
	os.Setenv("SSO_REPLAY_WINDOW", "2m")
	os.Setenv("RATE_LIMIT_ENABLED", "false")
	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("SSO_EMAIL_DOMAIN")
		os.Unsetenv("SSO_REPLAY_WINDOW")
		os.Unsetenv("RATE_LIMIT_ENABLED")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.SSOEmailDomain != "corp.example" {
		t.Errorf("SSOEmailDomain = %q, want %q", cfg.SSOEmailDomain, "corp.example")
	}
	if cfg.ReplayWindow != 2*time.Minute {
		t.Errorf("ReplayWindow = %v, want %v", cfg.ReplayWindow, 2*time.Minute)
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled should be false")
	}
}
