package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luraaya/factengine/internal/api"
	"github.com/luraaya/factengine/internal/buildconfig"
	"github.com/luraaya/factengine/internal/config"
	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/ephemeris"
	"github.com/luraaya/factengine/internal/service"
	"github.com/luraaya/factengine/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}

	logger := newLogger(config.LogLevel())
	defer func() { _ = logger.Sync() }()

	houseSystem := domain.HouseSystem(config.HouseSystem())
	if !domain.ValidHouseSystem(string(houseSystem)) {
		logger.Fatal("invalid HOUSE_SYSTEM", zap.String("house_system", string(houseSystem)))
	}

	provider := config.EphemerisProvider()
	engine, err := ephemeris.NewEngine(provider)
	if err != nil {
		logger.Fatal("failed to initialize ephemeris engine", zap.String("provider", provider), zap.Error(err))
	}
	meta := engine.Meta()
	logger.Info("ephemeris engine initialized",
		zap.String("provider", provider),
		zap.String("ephemeris_version", meta.EphemerisVersion),
		zap.String("engine_version", meta.EngineVersion),
	)

	ctx := context.Background()

	opts := api.Options{
		Engine:         engine,
		CalcVersion:    config.CalcVersion(),
		TZDataVersion:  config.TZDataVersion(),
		HouseSystem:    houseSystem,
		APIKey:         config.ComputeAPIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
	}

	if dbURL := config.DatabaseURL(); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("failed to ping database", zap.Error(err))
		}
		applied, err := store.ApplyMigrations(ctx, pool, config.MigrationsPath())
		if err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}
		logger.Info("connected to database", zap.Strings("migrations", applied))
		opts.DB = pool
	} else {
		places := store.NewMemoryPlaceStore()
		path, explicit := config.PlacesFile()
		n, err := service.NewPlaceService(places, logger).ImportFile(ctx, path, !explicit)
		if err != nil {
			logger.Fatal("failed to load places file", zap.String("path", path), zap.Error(err))
		}
		logger.Info("loaded places file", zap.String("path", path), zap.Int("count", n))
		logger.Info("using in-memory place directory")
		opts.Places = places
	}

	app := api.NewApp(opts, logger)

	// Start background services
	app.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("version", buildconfig.Version()),
			zap.String("calc_version", opts.CalcVersion),
			zap.String("tzdata_version", opts.TZDataVersion),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	// Stop background services
	app.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
