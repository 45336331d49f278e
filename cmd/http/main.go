package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lasmate/Alisee/internal/auth"
	"github.com/lasmate/Alisee/internal/cache"
	"github.com/lasmate/Alisee/internal/config"
	"github.com/lasmate/Alisee/internal/handler"
	"github.com/lasmate/Alisee/internal/repository"
	"github.com/lasmate/Alisee/internal/service"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// 2. Setup store
	ctx := context.Background()
	var store service.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		slog.Warn("Using in-memory store, data is lost on exit")
		store = repository.NewMemoryStore()
	default:
		dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := dbPool.Ping(ctx); err != nil {
			slog.Error("Failed to ping database", "error", err)
			os.Exit(1)
		}
		slog.Info("Connected to database")

		repo := repository.NewShopRepository(dbPool)
		if err := repo.Migrate(ctx); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		store = repo
	}

	// 3. Optional Redis for the item cache and rate limiting
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Redis unavailable, falling back to in-process cache", "error", err)
		} else {
			defer redisClient.Close()
			slog.Info("Connected to redis", "addr", cfg.Redis.Addr)
		}
	}

	var itemCache cache.Cache = cache.NewMemory(cfg.CacheTTL)
	if redisClient != nil {
		itemCache = cache.NewRedis(redisClient, "alisee:", cfg.CacheTTL)
	}

	// 4. Setup logic
	shop := service.NewShopService(store, auth.NewIssuer(cfg.Session.Secret), itemCache, cfg.Session.TTL)
	h := handler.NewHandler(shop, handler.Options{
		SecureCookies: cfg.IsProduction(),
		SessionTTL:    cfg.Session.TTL,
		Limiter:       handler.NewRateLimiter(redisClient, cfg.RateLimit, time.Minute),
	})

	// 5. Setup server
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// 6. Run server with graceful shutdown
	go func() {
		slog.Info("Starting server", "port", cfg.ServerPort, "driver", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server exiting")
}
