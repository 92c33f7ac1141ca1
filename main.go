// main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ticket-sales/cmd"
	"ticket-sales/internal/data/cache"
	"ticket-sales/internal/data/repository"
	"ticket-sales/internal/wire"
	"ticket-sales/pkg/database"
	"ticket-sales/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Schema
	if config.Database.AutoMigrate {
		if err := database.Migrate(config.Database, logger); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Statistics cache
	statsCache := cache.NewNoop()
	if config.Redis.Enabled() {
		client, err := cache.Connect(ctx, config.Redis.Addr, config.Redis.Password, config.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, statistics cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			statsCache = cache.NewRedisStatsCache(client, config.Redis.StatsTTL, logger)
			logger.Info("Statistics cache enabled", zap.String("addr", config.Redis.Addr))
		}
	}

	repos := repository.NewRepository(db, logger)

	app := wire.Wiring(db, repos, statsCache, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}

	logger.Info("Server stopped")
}
