package main

import (
	"solar-siting-service/internal/config"
	"solar-siting-service/internal/logger"
	"solar-siting-service/internal/platform/db"
	"strings"

	"go.uber.org/zap"
)

// dbtool prepares the Postgres lookup cache ahead of the first server start.
func main() {
	cfg := config.Load()

	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer conn.Close()

	log.Info("initializing database schema")
	if err := db.InitSchema(conn); err != nil {
		log.Fatal("schema initialization failed", zap.Error(err))
	}
	log.Info("schema ready")
}
