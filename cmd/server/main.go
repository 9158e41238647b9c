package main

import (
	"context"

	"modelsagent/internal/config"
	logpkg "modelsagent/internal/log"
	"modelsagent/internal/server"
	"modelsagent/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	dotenvErr := godotenv.Load()

	logger := logpkg.CreateLogger()
	defer func() { _ = logger.Close() }()

	if dotenvErr != nil {
		logger.Warn("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadServerConfigFromEnv(logger)
	if err != nil {
		logger.Fatal("Failed to load server configuration: %v", err)
	}
	cfg.Logger = logger
	cfg.KeyCache = storage.InitKeyCache(context.Background(), cfg.Endpoints.KeysURL, logger)

	srv, err := server.NewServer(cfg)
	if err != nil {
		_ = cfg.KeyCache.Close()
		logger.Fatal("Failed to create server: %v", err)
	}
	defer func() { _ = srv.Close() }()

	if err := srv.Run(); err != nil {
		logger.Fatal("Server error: %v", err)
	}
}
