package http

import (
	"database/sql"
	"log/slog"

	"github.com/gabriel/content-resolver/internal/config"
	"github.com/gabriel/content-resolver/internal/http/handlers"
	"github.com/gabriel/content-resolver/internal/providers"
	providerdefaults "github.com/gabriel/content-resolver/internal/providers/defaults"
	"github.com/gabriel/content-resolver/internal/repository"
	"github.com/gabriel/content-resolver/internal/resolver"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func NewServer(cfg config.Config, db *sql.DB) *fiber.App {
	return NewServerWithRegistry(cfg, db, nil, nil)
}

func NewServerWithRegistry(cfg config.Config, db *sql.DB, registry *providers.Registry, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	if registry == nil {
		loadedRegistry, err := providerdefaults.NewRegistry(cfg.ProvidersConfigPath, nil, logger)
		if err != nil {
			logger.Warn("provider settings loaded with warnings", "error", err)
		}
		registry = loadedRegistry
	}

	service := resolver.NewService(registry, resolver.Options{Order: cfg.ProviderOrder, Logger: logger})
	defaults := cfg.Preferences()

	health := handlers.NewHealthHandler(db, registry)
	providerHandlers := handlers.NewProvidersHandler(registry, service, repository.NewProviderStatusRepository(db))
	resolve := handlers.NewResolveHandler(db, service, defaults)
	preferences := handlers.NewPreferencesHandler(db, defaults)

	app.Get("/health", health.Check)
	app.Get("/v1/health", health.Check)

	v1 := app.Group("/v1")
	v1.Get("/providers", providerHandlers.List)
	v1.Get("/providers/health", providerHandlers.Health)
	v1.Get("/providers/:provider/entries", providerHandlers.Entries)
	v1.Get("/providers/:provider/locations", providerHandlers.Locations)
	v1.Get("/resolve", resolve.Resolve)
	v1.Get("/profiles/:profile/preferences", preferences.Get)
	v1.Put("/profiles/:profile/preferences", preferences.Update)

	return app
}
