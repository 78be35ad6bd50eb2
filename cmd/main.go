package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/config"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/handlers"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/logger"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/repository/sqldb"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/server"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv)

	ctx := context.Background()

	dsn := cfg.Database.URL
	if cfg.Database.Mode == "dev" {
		dsn = cfg.Database.File
	}
	gateway, err := db.Open(ctx, db.Mode(cfg.Database.Mode), dsn)
	if err != nil {
		log.Fatal().Err(err).Str("mode", cfg.Database.Mode).Msg("Failed to open database backend")
	}
	defer gateway.Close()

	userRepo := sqldb.NewUserRepository(gateway)
	linkRepo := sqldb.NewMagicLinkRepository(gateway)
	tokenRepo := sqldb.NewTokenRepository(gateway)

	magicLinks := service.NewMagicLinkService(userRepo, linkRepo, cfg.MagicLink.TTL)
	tokens := service.NewTokenService(tokenRepo)
	sessions := service.NewJWTService(cfg.JWTSecret, cfg.Session.TokenDuration)

	var mailer service.EmailService
	if cfg.AppEnv == "production" {
		mailer = service.NewSMTPEmailService(&cfg.SMTP)
	} else {
		mailer = service.NewLogEmailService()
	}
	auth := service.NewAuthService(magicLinks, sessions, mailer, cfg.MagicLink.BaseURL, cfg.MagicLink.TTL)

	stop := make(chan struct{})
	go runCleanup(ctx, magicLinks, tokens, cfg.CleanupInterval, stop)

	app := server.New(handlers.NewAuthHandler(auth))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Info().Str("port", cfg.Port).Str("mode", cfg.Database.Mode).Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-quit
	log.Info().Msg("Shutting down server...")
	close(stop)

	if err := app.Shutdown(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped gracefully.")
}

// runCleanup periodically sweeps expired magic links and tokens. Both sweeps
// are idempotent, so a missed or repeated tick is harmless.
func runCleanup(ctx context.Context, links service.MagicLinkAuthority, tokens service.TokenAuthority, interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n, err := links.DeleteExpired(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to delete expired magic links")
			} else if n > 0 {
				log.Info().Int64("count", n).Msg("Expired magic links removed")
			}
			if n, err := tokens.DeleteExpired(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to delete expired tokens")
			} else if n > 0 {
				log.Info().Int64("count", n).Msg("Expired tokens removed")
			}
		}
	}
}
