package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/app"
	"github.com/parking-aggregator/internal/config"
	httpDelivery "github.com/parking-aggregator/internal/delivery/http"
	"github.com/parking-aggregator/internal/delivery/http/handler"
	"github.com/parking-aggregator/internal/pkg/logger"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "parking-aggregator-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Parking Aggregator API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("store_driver", cfg.Store.Driver),
	)

	// 3. Connections, repositories, use cases
	application, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// 4. Initialize HTTP Handlers
	sourceHandler := handler.NewSourceHandler(application.SourceUC, log)
	siteDuplicateHandler := handler.NewDuplicateHandler(application.SiteDuplicateUC, "parking_site", log)
	spotDuplicateHandler := handler.NewDuplicateHandler(application.SpotDuplicateUC, "parking_spot", log)

	// 5. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		sourceHandler,
		siteDuplicateHandler,
		spotDuplicateHandler,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.Int("sources", application.Registry.Len()),
	)

	// 6. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
