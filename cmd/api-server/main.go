package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/mail"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.Migrate(db, logger); err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// the limiter fails open, so a missing redis only weakens it
			logger.Warn("redis unreachable, rate limiting degrades to pass-through", "error", err)
		}
		cancel()
	}

	mailer, err := mail.New(cfg, logger)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	router, err := handler.NewRouter(handler.Dependencies{
		Auth:       service.NewAuthService(userRepo, refreshTokenRepo, mailer, cfg, logger),
		Users:      service.NewUserService(userRepo),
		Categories: service.NewCategoryService(categoryRepo),
		Genres:     service.NewGenreService(genreRepo),
		Titles:     service.NewTitleService(titleRepo, categoryRepo, genreRepo),
		Reviews:    service.NewReviewService(reviewRepo, titleRepo),
		Comments:   service.NewCommentService(commentRepo, reviewRepo),
		UserRepo:   userRepo,
		Redis:      rdb,
		RateLimit: middleware.RateLimitConfig{
			Enabled:        cfg.RateLimitEnabled,
			Capacity:       cfg.RateLimitCapacity,
			RefillInterval: cfg.RateLimitRefillInterval,
		},
		PageSize: cfg.PageSize,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeExpiredTokens(ctx, refreshTokenRepo, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// purgeExpiredTokens deletes expired refresh tokens once an hour.
func purgeExpiredTokens(ctx context.Context, repo repository.RefreshTokenRepository, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				logger.Warn("purge expired refresh tokens", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired refresh tokens", "count", n)
			}
		}
	}
}
