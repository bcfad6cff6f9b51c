package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"solar-siting-service/internal/api"
	"solar-siting-service/internal/app"
	"solar-siting-service/internal/config"
	"solar-siting-service/internal/logger"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires the analyzer (NASA POWER, Open-Meteo, optional caches) and starts the HTTP server.
func main() {
	cfg := config.Load()

	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, cleanup, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to build analyzer", zap.Error(err))
	}
	defer cleanup()

	router := api.NewRouter(analyzer, cfg.MaxRadiusKm, cfg.AllowedOrigins, log)

	// WriteTimeout stays at zero: progress streams last as long as the run.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
