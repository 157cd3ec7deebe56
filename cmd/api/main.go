package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"forestdash/internal/api"
	"forestdash/internal/config"
	"forestdash/internal/data"
	"forestdash/internal/domain"
	"forestdash/internal/history"
	"forestdash/internal/metrics"
	"forestdash/internal/training"
	"forestdash/pkg/utils"
)

func main() {
	cfgPath := flag.String("config", "", "YAML settings file (default ./forestdash.yaml)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Logger().Warn("could not read .env", zap.Error(err))
	}
	settings, err := config.Load(*cfgPath)
	if err != nil {
		utils.Logger().Fatal("invalid settings", zap.Error(err))
	}
	logger := utils.Configure(settings.Log.File, settings.Log.Level)
	defer logger.Sync()
	if settings.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	catalog := domain.Builtin()
	if settings.Forest.Catalog != "" {
		extra, err := domain.LoadCatalog(settings.Forest.Catalog)
		if err != nil {
			logger.Fatal("failed to load domain catalog", zap.String("path", settings.Forest.Catalog), zap.Error(err))
		}
		catalog = catalog.Merge(extra)
	}

	datasets, err := data.LoadFixtures()
	if err != nil {
		logger.Fatal("failed to load datasets", zap.Error(err))
	}
	session, err := training.NewSession(training.DefaultPresets(), datasets)
	if err != nil {
		logger.Fatal("failed to start training session", zap.Error(err))
	}

	var engine training.Engine
	switch settings.Training.Engine {
	case "fitted":
		engine = training.NewFitted(settings.Training.Seed)
	default:
		engine = training.NewSimulator(settings.Training.Delay, settings.Training.FailureRate, settings.Training.Seed)
	}

	var store *history.Store
	if settings.Storage.Path != "" {
		store, err = history.Open(settings.Storage.Path)
		if err != nil {
			logger.Fatal("failed to open history", zap.String("path", settings.Storage.Path), zap.Error(err))
		}
		defer store.Close()
	}

	srv := api.New(api.Deps{
		Settings: settings,
		Catalog:  catalog,
		Datasets: datasets,
		Session:  session,
		Engine:   engine,
		History:  store,
		Metrics:  metrics.New(),
		Logger:   logger,
	})
	logger.Info("forest dashboard starting",
		zap.Int("domains", len(catalog.List())),
		zap.Strings("datasets", datasets.Names()),
		zap.String("engine", engine.Name()),
		zap.Bool("history", store != nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
