// Command mvnseed loads a YAML manifest of Maven components into the database.
//
//	ENV=local mvnseed -manifest testdata/seed.yaml
//	ENV=local mvnseed -reset -manifest testdata/seed.yaml
package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mvnquery/internal/config"
	"github.com/kailas-cloud/mvnquery/internal/db/driver"
	logpkg "github.com/kailas-cloud/mvnquery/internal/logger"
	assetrepo "github.com/kailas-cloud/mvnquery/internal/repository/asset"
	componentrepo "github.com/kailas-cloud/mvnquery/internal/repository/component"
	"github.com/kailas-cloud/mvnquery/internal/repository/registry"
	"github.com/kailas-cloud/mvnquery/internal/seed"
)

func main() {
	manifestPath := flag.String("manifest", "seed.yaml", "path to the seed manifest")
	reset := flag.Bool("reset", false, "drop the component index and delete all components and assets first")
	flag.Parse()

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

	manifest, err := seed.LoadManifest(*manifestPath)
	if err != nil {
		logger.Fatal("Failed to load manifest", zap.String("path", *manifestPath), zap.Error(err))
	}

	store, err := driver.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := logpkg.ContextWithLogger(context.Background(), logger)
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	repos, err := cfg.BuildRepositories()
	if err != nil {
		logger.Fatal("Invalid repositories", zap.Error(err))
	}
	reg, err := registry.New(repos)
	if err != nil {
		logger.Fatal("Invalid repository registry", zap.Error(err))
	}

	components := componentrepo.New(store, cfg.Storage.KeyPrefix)
	assets := assetrepo.New(store, cfg.Storage.KeyPrefix)

	if *reset {
		docs, err := components.Reset(ctx)
		if err != nil {
			logger.Fatal("Failed to reset components", zap.Error(err))
		}
		keys, err := assets.Purge(ctx)
		if err != nil {
			logger.Fatal("Failed to purge assets", zap.Error(err))
		}
		logger.Info("Reset complete", zap.Int("components", docs), zap.Int("asset_keys", keys))
	}

	if err := components.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create component index", zap.Error(err))
	}

	stats, err := seed.New(components, assets, reg).Apply(ctx, manifest)
	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}

	logger.Info("Seed complete",
		zap.Int("components", stats.Components),
		zap.Int("assets", stats.Assets),
		zap.Int64("bytes", stats.Bytes),
	)
}
