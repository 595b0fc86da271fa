package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/logger"
	"reviewhub/internal/mailer"
	"reviewhub/internal/microservices/http-api/handler"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/ratelimit"
	"reviewhub/internal/validators"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logg := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	slog.SetDefault(logg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validators.RegisterBindings(); err != nil {
		log.Fatalf("register validators: %v", err)
	}

	ctx := context.Background()
	settings := config.NewSettings(cfg)

	db, err := database.OpenGorm(cfg.DatabaseURL, logg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database pool: %v", err)
	}
	defer pool.Close()

	limiter := signupLimiter(ctx, cfg, logg)
	if keyed, ok := limiter.(*ratelimit.KeyedLimiter); ok {
		defer keyed.Stop()
	}

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	} else {
		logg.Warn("SMTP_HOST not set, confirmation codes are logged instead of mailed")
		mail = mailer.NewLogMailer(logg)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	services := handler.Services{
		Auth:       service.NewAuthService(userRepo, service.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL), mail, settings, logg),
		Users:      service.NewUserService(userRepo, settings),
		Categories: service.NewCategoryService(categoryRepo),
		Genres:     service.NewGenreService(genreRepo),
		Titles:     service.NewTitleService(titleRepo, categoryRepo, genreRepo),
		Reviews:    service.NewReviewService(reviewRepo, titleRepo),
		Comments:   service.NewCommentService(commentRepo, reviewRepo),
	}

	router := handler.NewRouter(services, handler.RouterOptions{
		Settings:       settings,
		Log:            logg,
		SignupLimiter:  limiter,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Health:         pool,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logg.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logg.Info("received shutdown signal")
	case err := <-errChan:
		logg.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logg.Info("server stopped")
}

// signupLimiter uses redis when configured so the budget is shared across
// instances, and an in-process limiter otherwise.
func signupLimiter(ctx context.Context, cfg *config.Config, logg *slog.Logger) ratelimit.Limiter {
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.ConnectRedis(ctx, cfg.RedisURL)
		if err == nil {
			return ratelimit.NewRedisLimiter(rdb, "reviewhub:signup", cfg.SignupRatePerMinute, time.Minute)
		}
		logg.Warn("redis unavailable, falling back to in-process signup throttling", slog.Any("error", err))
	}
	return ratelimit.NewKeyed(cfg.SignupRatePerMinute, time.Minute)
}
