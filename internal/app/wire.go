// Package app builds the analyzer from configuration. It is the composition
// root shared by the server and the CLI.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"solar-siting-service/internal/adapters/cache"
	"solar-siting-service/internal/adapters/elevation"
	"solar-siting-service/internal/adapters/irradiance"
	"solar-siting-service/internal/config"
	"solar-siting-service/internal/platform/db"
	"solar-siting-service/internal/platform/httpclient"
	"solar-siting-service/internal/ports"
	"solar-siting-service/internal/services"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Build wires concrete adapters (NASA POWER, Open-Meteo, optional Postgres
// and Redis caches) behind ports. The returned func releases the caches.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*services.Analyzer, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var elevationCache ports.ElevationCache
	if cfg.DatabaseURL != "" {
		conn, err := openElevationDB(cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = conn.Close() })
		elevationCache = cache.NewSQLElevationCache(conn)
		log.Info("elevation cache enabled", zap.String("backend", "postgres"))
	}

	var irradianceCache ports.IrradianceCache
	if cfg.RedisURL != "" {
		client, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		irradianceCache = cache.NewRedisIrradianceCache(client, cfg.IrradianceCacheTTL)
		log.Info("irradiance cache enabled", zap.String("backend", "redis"))
	}

	irrClient := httpclient.New(httpclient.Options{
		Timeout:        cfg.HTTPTimeout,
		MaxAttempts:    cfg.HTTPMaxAttempts,
		RequestsPerSec: cfg.IrradianceRPS,
	})
	irrSource, err := irradiance.NewNASAPowerSource(irrClient, cfg.NASAPowerBaseURL, irradianceCache, log)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build irradiance source: %w", err)
	}

	elevClient := httpclient.New(httpclient.Options{
		Timeout:        cfg.HTTPTimeout,
		MaxAttempts:    cfg.HTTPMaxAttempts,
		RequestsPerSec: cfg.ElevationRPS,
	})
	elevSource, err := elevation.NewOpenMeteoSource(elevClient, cfg.OpenMeteoBaseURL, elevationCache, log)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build elevation source: %w", err)
	}

	analyzer, err := services.NewAnalyzer(irrSource, elevSource, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return analyzer, cleanup, nil
}

func openElevationDB(databaseURL string) (*sql.DB, error) {
	conn, err := db.Open(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open elevation cache: %w", err)
	}
	if err := db.InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open elevation cache: %w", err)
	}
	return conn, nil
}

func openRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("open irradiance cache: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("open irradiance cache: ping redis: %w", err)
	}

	return client, nil
}
