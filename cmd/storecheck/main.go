package main

import (
	"context"
	"flag"
	"os"
	"time"

	"weatherstation/config"
	"weatherstation/services"

	"go.uber.org/zap"
)

var (
	testPath = flag.String("path", "test", "Store path to push the connection test record to")
	timeout  = flag.Duration("timeout", 15*time.Second, "Overall timeout for the check")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Store connection check",
		zap.String("backend", cfg.StoreBackend),
		zap.String("url", cfg.FirebaseDbUrl),
		zap.String("path", *testPath))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, closeStore, err := services.OpenRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer closeStore()

	testData := map[string]any{
		"test":      true,
		"timestamp": time.Now().Unix(),
		"message":   "Connection test from weather station",
		"device":    cfg.DeviceID,
	}

	result := store.Push(ctx, *testPath, testData)
	if !result.Success {
		logger.Error("Store connection failed",
			zap.String("message", result.Message),
			zap.Error(result.Err()))
		logger.Info("Check the network connection, FIREBASE_DB_URL and the database rules")
		closeStore()
		os.Exit(1)
	}

	logger.Info("Store connection successful", zap.ByteString("response", result.Body))
	logger.Info("The weather station is ready to run")
}
