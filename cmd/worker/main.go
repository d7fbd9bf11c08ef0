package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/parking-aggregator/internal/app"
	"github.com/parking-aggregator/internal/config"
	"github.com/parking-aggregator/internal/converter"
	"github.com/parking-aggregator/internal/pkg/logger"
	"github.com/parking-aggregator/internal/worker"
	"github.com/parking-aggregator/internal/worker/importer"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "parking-aggregator-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Parking Import Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.String("static_schedule", cfg.Worker.DefaultStaticSchedule),
		zap.String("realtime_schedule", cfg.Worker.DefaultRealtimeSchedule))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connections, repositories, use cases
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// 4. Initialize workers
	workerManager := worker.NewWorkerManager(log, cfg.Import.LockTTL)
	workerManager.Register(importer.NewScheduleWorker(
		application.Registry,
		application.SourceUC,
		converter.Schedule{
			Static:   cfg.Worker.DefaultStaticSchedule,
			Realtime: cfg.Worker.DefaultRealtimeSchedule,
		},
		log,
	))

	if application.StreamRepo != nil {
		workerManager.Register(importer.NewRequestWorker(
			application.StreamRepo,
			application.SourceUC,
			cfg.Worker.ConsumerGroup,
			cfg.Worker.MaxRetries,
			log,
		))
	} else {
		log.Warn("Redis is not configured, import request stream is not consumed")
	}

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// сначала Stop: идущие импорты завершаются до отмены ctx
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Worker shutdown complete")
}
