// cmd/historian/main.go is an asynchronous historian service that pops lobby events from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/truthorlie/internal/cache"
	"github.com/jason-s-yu/truthorlie/internal/config"
	"github.com/jason-s-yu/truthorlie/internal/database"
	"github.com/jason-s-yu/truthorlie/internal/historian"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := cfg.NewLogger()
	if cfg.RedisAddr == "" || cfg.DatabaseURL == "" {
		logger.Fatal("REDIS_ADDR and DATABASE_URL are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer pool.Close()

	archive := database.NewArchive(pool)
	if err := archive.EnsureSchema(ctx); err != nil {
		logger.Fatalf("%v", err)
	}

	svc := historian.NewService(
		historian.NewRedisSource(rdb, cfg.QueueName),
		archive,
		logger.WithField("component", "historian"),
		cfg.HistorianBatchSize,
		cfg.HistorianFlush,
		cfg.GameInactivity,
	)
	if err := svc.Run(ctx); err != nil {
		logger.Errorf("historian stopped: %v", err)
	}
	logger.Info("Historian shutdown complete.")
}
