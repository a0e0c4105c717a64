package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehicle-storage-backend/config"
	"vehicle-storage-backend/internal/api"
	"vehicle-storage-backend/internal/db"
	"vehicle-storage-backend/internal/fee"
	"vehicle-storage-backend/internal/notification"
	"vehicle-storage-backend/internal/ocr"
	"vehicle-storage-backend/internal/persist"
	"vehicle-storage-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	logger := log.New(os.Stdout, "yard-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys are not configured; push notifications disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize subscription database: %v", err)
	}
	logger.Println("subscription database initialized")

	files := persist.NewFiles(cfg.Storage.DataFile, cfg.Storage.HistoryFile)

	occupancy, err := files.LoadOccupancy()
	if err != nil {
		logger.Fatalf("failed to load occupancy snapshot: %v", err)
	}
	history, err := files.LoadHistory()
	if err != nil {
		logger.Fatalf("failed to load history snapshot: %v", err)
	}

	calc := fee.NewCalculator(cfg.Fee)
	yard := store.New(cfg.Yard.Areas(), cfg.Yard.MaxCapacity, calc.Calculate, fee.ExtrasFromNotes, files)
	yard.Restore(occupancy, history)
	logger.Printf("yard restored: %d vehicle(s) parked, %d history entries", yard.TotalParked(), len(yard.History("", 0)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Monitor.Enabled && webpushOptions != nil {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		monitor := notification.NewMonitor(cfg, yard, pool)
		go monitor.Run(ctx)
	}

	recognizer := ocr.NewClient(cfg.Recognizer)

	handler := api.NewHandler(yard, gormDB, webpushOptions, recognizer)
	router := api.NewRouter(cfg, handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
