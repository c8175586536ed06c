// @title Qroly Backend API
// @version 1.0
// @description Qroly backend: personal redirect links, social and UPI payment QR codes

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	_ "QROLY_BACK-END/docs" // This is required for swagger
	"QROLY_BACK-END/internal/cache"
	"QROLY_BACK-END/internal/config"
	"QROLY_BACK-END/internal/database"
	"QROLY_BACK-END/internal/handlers"
	"QROLY_BACK-END/internal/logger"
	"QROLY_BACK-END/internal/routes"
	"QROLY_BACK-END/internal/security"
	"QROLY_BACK-END/internal/services"
	"QROLY_BACK-END/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.GetDSN(), "up"); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}
		log.Info().Msg("Database migrations applied")
	}

	pool, err := database.NewPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	users := store.NewUserStore(pool)
	profiles := store.NewProfileStore(pool)

	// The interfaces stay nil unless Redis is configured.
	var (
		profileCache services.ProfileCache
		cachePinger  handlers.Pinger
	)
	if cfg.IsRedisConfigured() {
		rc := cache.NewProfileCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			UseTLS:   cfg.Redis.UseTLS,
			TTL:      cfg.Redis.ProfileTTL,
		})
		defer rc.Close()
		profileCache = rc
		cachePinger = rc
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.ProfileTTL).Msg("Profile cache enabled")
	}

	authService := services.NewAuthService(users, security.NewHasher(cfg.JWT.BcryptCost))
	profileService := services.NewProfileService(profiles, profileCache)
	redirectService := services.NewRedirectService(profiles, profileCache)

	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, &cfg.JWT),
		Health:    handlers.NewHealthHandler(pool, cachePinger),
		Redirects: handlers.NewRedirectsHandler(profileService),
		Public:    handlers.NewPublicHandler(redirectService, cfg.App.PublicBaseURL, cfg.App.QRSize),
		QR:        handlers.NewQRHandler(profileService, cfg.App.PublicBaseURL, cfg.App.QRSize),
	}
	if cfg.IsGoogleOAuthConfigured() {
		h.GoogleAuth = handlers.NewGoogleAuthHandler(authService, cfg)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.NewRouter(cfg, h),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
