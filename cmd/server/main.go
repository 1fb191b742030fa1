package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/maxviazov/tennis-players-service/internal/config"
	"github.com/maxviazov/tennis-players-service/internal/handler"
	"github.com/maxviazov/tennis-players-service/internal/logger"
	"github.com/maxviazov/tennis-players-service/internal/metrics"
	"github.com/maxviazov/tennis-players-service/internal/repository"
	"github.com/maxviazov/tennis-players-service/internal/repository/memory"
	"github.com/maxviazov/tennis-players-service/internal/repository/mongo"
	"github.com/maxviazov/tennis-players-service/internal/repository/postgres"
	"github.com/maxviazov/tennis-players-service/internal/service"
)

func main() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	configPath := flag.String("config", envOr("APP_CONFIG", "config.yaml"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("service stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	players, closeStore, err := openStorage(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	rec := metrics.NewRecorder()
	playerSvc := service.NewPlayerService(players, service.Options{
		DefaultLimit: cfg.Players.DefaultLimit,
		MaxLimit:     cfg.Players.MaxLimit,
		MaxBulk:      cfg.Players.MaxBulk,
		MergeMode:    service.MergeMode(cfg.Players.MergeMode),
		Recorder:     rec,
	}, appLogger)
	analyticsSvc := service.NewAnalyticsService(players, appLogger)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := handler.NewEngine(appLogger, rec, cfg.HTTP.RequestTimeout)
	handler.Register(engine, handler.ServiceInfo{
		Name:    cfg.App.Name,
		Version: cfg.App.Version,
		Env:     cfg.App.Env,
		Storage: cfg.Storage.Driver,
	}, players, playerSvc, analyticsSvc, rec)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.WithCORS(engine, cfg.CORS.AllowedOrigins, cfg.CORS.MaxAge),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	appLogger.Info().Msg("✅ Service stopped")
	return nil
}

// openStorage connects the configured driver and returns its close func.
func openStorage(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (repository.PlayerRepository, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		appLogger.Warn().Msg("using in-memory storage, data is lost on restart")
		return memory.New(), func() {}, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, postgres.DSN(cfg.Postgres), cfg.Postgres, appLogger)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations failed: %w", err)
		}
		return postgres.NewPlayerRepository(pool, appLogger), pool.Close, nil

	default:
		store, err := mongo.New(ctx, cfg.Mongo, appLogger)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		closeFn := func() {
			c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(c); err != nil {
				appLogger.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}
		return store, closeFn, nil
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
