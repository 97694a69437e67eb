package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"formcast/config"
	"formcast/db"
	qhttp "formcast/http"
	"formcast/logger"
	"formcast/ml"
	"formcast/monitoring"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load .env and config
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Load models
	metrics := monitoring.NewMetrics()
	store, err := ml.LoadStore(ctx, cfg.Models.Dir, ml.StoreOptions{
		CacheSize:  cfg.Models.CacheSize,
		OnCacheHit: metrics.CacheHit,
	})
	if err != nil {
		zl.Fatal("failed to load models", zap.String("dir", cfg.Models.Dir), zap.Error(err))
	}
	for _, m := range store.Models() {
		zl.Info("model loaded", zap.String("model", m.Name), zap.String("task", string(m.Task)))
	}

	deps := qhttp.Deps{Models: store, Logger: zl, Metrics: metrics}

	// 3. Prediction log
	if cfg.Database.Path != "" {
		history, err := db.Open(cfg.Database.Path)
		if err != nil {
			zl.Fatal("failed to open database", zap.String("path", cfg.Database.Path), zap.Error(err))
		}
		defer history.Close()
		deps.History = history
		zl.Info("prediction log enabled", zap.String("path", cfg.Database.Path))
	}

	// 4. Templates
	deps.Templates, err = qhttp.LoadTemplates(cfg.Templates.Dir)
	if err != nil {
		zl.Fatal("failed to load templates", zap.Error(err))
	}
	if cfg.Templates.Watch {
		if err := deps.Templates.Watch(ctx, zl); err != nil {
			zl.Warn("template watch disabled", zap.Error(err))
		}
	}

	// 5. Start HTTP server
	server, err := qhttp.NewServer(cfg, deps)
	if err != nil {
		zl.Fatal("failed to build server", zap.Error(err))
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 6. Handle graceful shutdown
	select {
	case <-ctx.Done():
		zl.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			zl.Error("HTTP server failed", zap.Error(err))
		}
	}

	if err := server.Stop(); err != nil {
		zl.Warn("server forced to shutdown", zap.Error(err))
	}
	zl.Info("exiting")
}
