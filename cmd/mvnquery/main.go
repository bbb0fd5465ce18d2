package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mvnquery/internal/config"
	"github.com/kailas-cloud/mvnquery/internal/db/driver"
	logpkg "github.com/kailas-cloud/mvnquery/internal/logger"
	"github.com/kailas-cloud/mvnquery/internal/metrics"
	assetrepo "github.com/kailas-cloud/mvnquery/internal/repository/asset"
	componentrepo "github.com/kailas-cloud/mvnquery/internal/repository/component"
	"github.com/kailas-cloud/mvnquery/internal/repository/registry"
	chiTransport "github.com/kailas-cloud/mvnquery/internal/transport/chi"
	downloaduc "github.com/kailas-cloud/mvnquery/internal/usecase/download"
	healthuc "github.com/kailas-cloud/mvnquery/internal/usecase/health"
	versionsuc "github.com/kailas-cloud/mvnquery/internal/usecase/versions"
	"github.com/kailas-cloud/mvnquery/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mvnquery API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Int("repositories", len(cfg.Repositories)),
	)

	store, err := driver.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterResolutionMetrics()

	// Validate already checked the repository list; this only converts it.
	repos, err := cfg.BuildRepositories()
	if err != nil {
		logger.Fatal("Invalid repositories", zap.Error(err))
	}
	reg, err := registry.New(repos)
	if err != nil {
		logger.Fatal("Invalid repository registry", zap.Error(err))
	}

	components := componentrepo.New(store, cfg.Storage.KeyPrefix)
	if err := components.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create component index", zap.Error(err))
	}
	assets := assetrepo.New(store, cfg.Storage.KeyPrefix)

	builder := versionsuc.NewQueryBuilder(reg)
	versionSvc := versionsuc.New(builder, components, versionsuc.Limits{
		Default: cfg.Maven.DefaultLimit,
		Max:     cfg.Maven.MaxLimit,
	}, cfg.Location())
	downloadSvc := downloaduc.New(reg, builder, components, versionSvc, assets).
		WithDefaultExtension(cfg.Maven.DefaultExtension)
	healthSvc := healthuc.New(store, components)

	server := chiTransport.NewServer(versionSvc, downloadSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
