package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/dexradar/token-news-monitor/internal/config"
	"github.com/dexradar/token-news-monitor/internal/di"
	"github.com/dexradar/token-news-monitor/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	container, err := di.NewContainer(ctx, cfg, logger.New(cfg.LogLevel))
	if err != nil {
		log.Fatalf("Failed to create dependencies: %v", err)
	}
	defer container.Close()

	// Run a single pass and print its result
	result, err := container.Monitor.RunOnce(ctx)
	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			log.Printf("Failed to encode result: %v", encErr)
		}
	}
	if err != nil {
		container.Close()
		log.Fatalf("Pass failed: %v", err)
	}
}
