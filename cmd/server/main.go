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
	"github.com/vidshare/backend/config"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/cache"
	"github.com/vidshare/backend/internal/database"
	"github.com/vidshare/backend/internal/handlers"
	"github.com/vidshare/backend/internal/logging"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/middleware"
	"github.com/vidshare/backend/internal/repository"
	"github.com/vidshare/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format, cfg.IsProduction()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db.DB); err != nil {
		return err
	}

	healthChecks := map[string]handlers.Pinger{}
	store := repository.NewPostgresStore(db)
	healthChecks["database"] = store

	// Redis backs the shared rate limiter; without it each instance limits locally
	var shared middleware.ActionLimiter
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("running without Redis, rate limits are per instance", slog.Any("error", err))
	} else {
		defer redis.Close()
		shared = redis
		healthChecks["redis"] = redis
	}

	mediaStore, err := newMediaStore(cfg)
	if err != nil {
		return err
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	services := &service.Services{
		Auth:     service.NewAuthService(store, mediaStore, jwtService),
		Channels: service.NewChannelService(store, mediaStore),
		Videos:   service.NewVideoService(store, mediaStore),
		Comments: service.NewCommentService(store),
	}

	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitRequestsPerSec, shared)
	rateLimiter.Cleanup(ctx, 10*time.Minute)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Services:       services,
		RateLimiter:    rateLimiter,
		HealthChecks:   healthChecks,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		IsProduction:   cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("addr", srv.Addr), slog.String("env", cfg.Server.Env))
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

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newMediaStore uses Cloudinary when credentials are configured. Outside
// production it falls back to keeping uploads in memory.
func newMediaStore(cfg *config.Config) (media.Store, error) {
	if cfg.HasMediaCredentials() {
		return media.NewCloudinary(cfg.Media.CloudName, cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.RootFolder)
	}
	slog.Warn("Cloudinary credentials missing, storing media in memory")
	return media.NewMemory(), nil
}
