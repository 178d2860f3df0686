package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"weatherstation/config"
	"weatherstation/log"
	"weatherstation/services"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	if _, err := log.Init(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := log.GetInstance()
	defer logger.Sync()

	profile, err := services.LightProfileByName(cfg.LightProfile)
	if err != nil {
		logger.Fatal("Invalid light profile", zap.Error(err))
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize hardware
	board, err := services.OpenBoard(cfg, profile, logger)
	if err != nil {
		logger.Fatal("Failed to initialize hardware", zap.String("mode", cfg.HardwareMode), zap.Error(err))
	}
	defer func() {
		if err := board.Close(); err != nil {
			logger.Error("Error releasing hardware", zap.Error(err))
		}
	}()

	// Initialize remote store
	store, closeStore, err := services.OpenRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("Error closing store", zap.Error(err))
		}
	}()

	station := services.NewStation(services.StationConfig{
		DeviceID:    cfg.DeviceID,
		HistoryPath: cfg.HistoryPath,
		LatestPath:  cfg.LatestPath,
		Interval:    cfg.ReadInterval,
	}, board.Climate, board.Light, services.NewClassifier(profile),
		services.NewIndicatorDriver(board.Red, board.Yellow, board.Green, logger), store, logger)

	// Optional telemetry mirrors. A mirror that cannot connect is skipped;
	// the store upload is the primary output.
	mirrors, err := services.OpenMirrors(cfg, logger)
	if err != nil {
		logger.Warn("Some telemetry mirrors could not connect", zap.Error(err))
	}
	for _, m := range mirrors {
		station.AddMirror(m)
		logger.Info("Telemetry mirror enabled", zap.String("mirror", m.Name()))
	}
	defer func() {
		if err := services.CloseMirrors(mirrors); err != nil {
			logger.Error("Error closing mirrors", zap.Error(err))
		}
	}()

	if cfg.TelegramBotToken != "" {
		notifier, err := services.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.DeviceID, cfg.AlertCooldown, logger)
		if err != nil {
			logger.Warn("Telegram alerts disabled", zap.Error(err))
		} else {
			station.SetNotifier(notifier)
			if err := notifier.SendStartupMessage(cfg.ReadInterval); err != nil {
				logger.Warn("Failed to send startup message", zap.Error(err))
			}
		}
	}

	logger.Info("Press Ctrl+C to stop")

	if err := station.Run(ctx); err != nil {
		logger.Error("Failed to clear indicators on shutdown", zap.Error(err))
	}

	logger.Info("Weather station shut down")
}
