package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/auth-api/internal/api"
	"github.com/isdelr/auth-api/internal/auth"
	"github.com/isdelr/auth-api/internal/config"
	"github.com/isdelr/auth-api/internal/logger"
	"github.com/isdelr/auth-api/internal/metrics"
	"github.com/isdelr/auth-api/internal/notify"
	"github.com/isdelr/auth-api/internal/services"
	"github.com/isdelr/auth-api/internal/store"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	// Set up the credential store
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	userStore, err := store.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open credential store")
	}
	if cfg.UsesMongo() {
		log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")
	} else {
		log.Info().Str("path", cfg.DatabaseURL).Msg("Using SQLite credential store")
	}

	// Set up services
	tokens := auth.NewTokenService(cfg)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	authService := services.NewAuthService(cfg, userStore, hasher, tokens)

	deps := api.Deps{
		AuthService:    authService,
		Tokens:         tokens,
		Store:          userStore,
		Metrics:        metrics.New(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.EmailEnabled() {
		sender, err := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure email delivery")
		}
		deps.Mailer = notify.NewNotifier(sender, cfg.ResetLinkBase)
	} else {
		log.Info().Msg("Recovery emails disabled: EMAIL_USER, EMAIL_PASS or RESET_LINK_BASE not set")
	}

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := userStore.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close credential store")
	}

	log.Info().Msg("Server exiting")
}
