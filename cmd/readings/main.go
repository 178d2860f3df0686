package main

import (
	"cmp"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"slices"
	"time"

	"weatherstation/config"
	"weatherstation/models"
	"weatherstation/services"

	"go.uber.org/zap"
)

var (
	limit   = flag.Int("limit", 20, "Show only the newest N history entries (0 for all)")
	timeout = flag.Duration("timeout", 30*time.Second, "Overall timeout")
)

type entry struct {
	Key    string
	Record models.Record
}

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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, closeStore, err := services.OpenRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer closeStore()

	result := store.Get(ctx, cfg.HistoryPath)
	if !result.Success {
		logger.Fatal("Error reading history", zap.String("path", cfg.HistoryPath), zap.String("message", result.Message))
	}

	entries, skipped, err := decodeHistory(result.Body, logger)
	if err != nil {
		logger.Fatal("Error decoding history", zap.Error(err))
	}
	if skipped > 0 {
		fmt.Printf("Skipped %d unreadable entries\n", skipped)
	}

	fmt.Printf("Total entries found: %d\n", len(entries))
	if *limit > 0 && len(entries) > *limit {
		entries = entries[len(entries)-*limit:]
		fmt.Printf("Showing newest %d\n", *limit)
	}

	for _, e := range entries {
		printRecord(e.Key, e.Record)
	}

	result = store.Get(ctx, cfg.LatestPath)
	if !result.Success {
		logger.Fatal("Error reading latest reading", zap.String("path", cfg.LatestPath), zap.String("message", result.Message))
	}

	var latest *models.Record
	if err := json.Unmarshal(result.Body, &latest); err != nil {
		logger.Warn("Latest reading is unreadable", zap.String("path", cfg.LatestPath), zap.Error(err))
		return
	}
	if latest == nil {
		fmt.Println("\nNo latest reading stored yet")
		return
	}

	fmt.Println("\nLatest reading:")
	printRecord(cfg.LatestPath, *latest)
}

// decodeHistory decodes every history entry on its own so one malformed
// record is logged and skipped. Entries come back oldest first.
func decodeHistory(body []byte, logger *zap.Logger) ([]entry, int, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, err
	}

	entries := make([]entry, 0, len(raw))
	skipped := 0
	for key, data := range raw {
		var record models.Record
		if err := json.Unmarshal(data, &record); err != nil {
			logger.Warn("Skipping unreadable history entry", zap.String("key", key), zap.Error(err))
			skipped++
			continue
		}
		entries = append(entries, entry{Key: key, Record: record})
	}

	// Oldest first so the newest reading ends up at the bottom
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.Record.Timestamp, b.Record.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return entries, skipped, nil
}

func printRecord(key string, r models.Record) {
	fmt.Printf("%s  %s  %.1f°C  %.1f%%  light %d (%s)  %s %s  %s\n",
		r.Time().Format("2006-01-02 15:04:05"),
		key,
		r.Temperature,
		r.Humidity,
		r.LightRaw,
		r.LightLevel,
		models.GetQualityEmoji(r.WeatherQuality),
		r.WeatherQuality,
		r.OutfitRecommendation)
}
