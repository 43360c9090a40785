package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel/content-resolver/internal/config"
	"github.com/gabriel/content-resolver/internal/database"
	apihttp "github.com/gabriel/content-resolver/internal/http"
	"github.com/gabriel/content-resolver/internal/notifications"
	providerdefaults "github.com/gabriel/content-resolver/internal/providers/defaults"
	"github.com/gabriel/content-resolver/internal/repository"
	"github.com/gabriel/content-resolver/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser := config.NewLogger(cfg, os.Stdout)
	defer logCloser.Close()
	slog.SetDefault(logger)

	db, err := database.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open sqlite", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.ApplyMigrations(db, cfg.MigrationsPath); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	if err := database.SeedDefaults(db, cfg.Preferences()); err != nil {
		slog.Error("failed to seed defaults", "error", err)
		os.Exit(1)
	}

	registry, registryErr := providerdefaults.NewRegistry(cfg.ProvidersConfigPath, nil, logger)
	if registryErr != nil {
		slog.Warn("provider registry loaded with warnings", "error", registryErr)
	}

	app := apihttp.NewServerWithRegistry(cfg, db, registry, logger)

	notifier, err := notifications.FromURL(cfg.HealthWebhookURL)
	if err != nil {
		slog.Warn("health webhook disabled", "error", err)
		notifier = notifications.NoopNotifier{}
	}

	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	monitor := scheduler.NewHealthMonitor(
		repository.NewProviderStatusRepository(db),
		registry,
		notifier,
		scheduler.MonitorConfig{
			Interval: time.Duration(cfg.HealthMonitorMinutes) * time.Minute,
		},
		logger,
	)
	if cfg.HealthMonitorEnabled {
		monitor.Start(monitorCtx)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment, "order", cfg.ProviderOrder)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	monitorCancel()
	monitor.StopWait(2 * time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
