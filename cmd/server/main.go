package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"myblog/internal/config"
	"myblog/internal/contenttypes"
	"myblog/internal/db"
	"myblog/internal/handlers"
	"myblog/internal/logger"
	"myblog/internal/router"
	"myblog/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(cfg.Log, cfg.Server.Env)
	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	log.Info().Msg("Starting myblog server...")

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	if err := db.Init(cfg.Database, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise database")
	}
	if created, err := db.SeedAdmin(cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin user")
	} else if created {
		log.Info().Str("username", cfg.Admin.Username).Msg("Admin user created")
	}

	registry := contenttypes.Default()

	signals := services.NewSignals()
	signals.Connect(services.NotifyOwner(db.DB, log))
	signals.Connect(services.InvalidateObjectCache)

	var filters []services.SpamFilter
	if cfg.Spam.AkismetAPIKey != "" {
		filters = append(filters, services.NewAkismetFilter(cfg.Spam.AkismetAPIKey, cfg.Server.SiteURL))
		log.Info().Msg("Akismet spam filter enabled")
	}

	app := &handlers.App{
		Config:   cfg,
		Registry: registry,
		Comments: services.NewCommentService(db.DB, cfg, services.NewMailService(cfg.Mail, log), signals, log),
		Ratings:  services.NewRatingService(db.DB, registry, log),
		Keywords: services.NewKeywordService(db.DB),
		Spam:     services.NewSpamFilters(log, filters...),
		Log:      log,
	}

	engine, err := router.New(app)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server stopped")
}
