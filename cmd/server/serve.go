package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/clock"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/config"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/handler"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/middleware"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/repository"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/service"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the liveness sweeper",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, appLogger, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, appLogger)
	},
}

func openRedis(ctx context.Context, cfg *config.Config, log logger.Logger) (*redis.Client, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	log.Info("Redis connection established", "addr", cfg.Redis.Addr)
	return rdb, nil
}

func serve(ctx context.Context, cfg *config.Config, appLogger logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := openRedis(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	repos, err := repository.NewRepositories(ctx, cfg, rdb, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.Close(); err != nil {
			appLogger.Error("Failed to close storage", "error", err)
		}
	}()

	services := service.NewServices(repos, cfg, clock.Real(), appLogger)
	handlers := handler.NewHandlers(services, cfg, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)
	router := handler.NewRouter(handlers, rateLimitMiddleware, cfg, appLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = services.Sweeper.Run(sweepCtx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stopSweeper()
		wg.Wait()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// stop taking requests first, then stop the sweeper
	shutdownErr := srv.Shutdown(shutdownCtx)
	stopSweeper()
	wg.Wait()

	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}
	appLogger.Info("Server exited")
	return nil
}
