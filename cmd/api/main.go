package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"slidecanvas/infrastructure/config"
	"slidecanvas/infrastructure/di"
	"slidecanvas/interfaces/http/rest"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, loader, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	container.Logger.Info("Configuration loaded",
		zap.Strings("sources", cfg.LoadedFrom),
		zap.String("environment", string(cfg.Environment)),
	)

	// Hot reload only where config files are edited by hand
	if cfg.IsDevelopment() {
		watcher := config.NewWatcher(loader, cfg, container.Logger.Named("config"))
		watcher.OnChange(container.ApplyConfig)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				container.Logger.Warn("Configuration watcher stopped", zap.Error(err))
			}
		}()
	}

	if err := rest.NewServer(container).Run(ctx); err != nil {
		container.Logger.Error("Server failed", zap.Error(err))
		return
	}
	container.Logger.Info("Server stopped")
}
