package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jscn-oa/console-sso/internal/config"
	httpserver "github.com/jscn-oa/console-sso/internal/http"
	"github.com/jscn-oa/console-sso/internal/httputil"
	"github.com/jscn-oa/console-sso/pkg/auth"
	"github.com/jscn-oa/console-sso/pkg/repository"
	"github.com/jscn-oa/console-sso/pkg/sso"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	accountsRepo := repository.NewAccountsRepository(db)
	tenantsRepo := repository.NewTenantsRepository(db)
	joinsRepo := repository.NewJoinsRepository(db)

	// Initialize services
	verifier := sso.NewVerifier(cfg.SSOSecretKey, cfg.ReplayWindow)
	accountService := sso.NewAccountService(sso.AccountServiceConfig{
		EmailDomain: cfg.SSOEmailDomain,
	}, db, accountsRepo, tenantsRepo, joinsRepo, logger)
	tokenService := auth.NewTokenService(auth.TokenConfig{
		JWTSecret:       []byte(cfg.JWTSecret),
		Issuer:          cfg.JWTIssuer,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})

	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Domain = cfg.CookieDomain
	cookieConfig.Secure = cfg.CookieSecure

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		Verifier:        verifier,
		AccountService:  accountService,
		TokenService:    tokenService,
		ConsoleWebURL:   cfg.ConsoleWebURL,
		CookieConfig:    cookieConfig,
		RateLimit:       cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
