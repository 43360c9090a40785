package defaults

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gabriel/content-resolver/internal/providers/native/aggregator"
	"github.com/gabriel/content-resolver/internal/providers/native/catalog"
	"github.com/gabriel/content-resolver/internal/providers/native/listing"
	"github.com/gabriel/content-resolver/internal/providers/providerconfig"
	"github.com/gabriel/content-resolver/internal/providers/upstream"
)

// NewRegistry loads provider settings from settingsPath and registers every
// enabled adapter. Providers without a primary url are skipped, except the
// catalog proxy which has a public default. A settings error is returned
// alongside a registry holding whatever could be built.
func NewRegistry(settingsPath string, client *http.Client, logger *slog.Logger) (*providers.Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := providers.NewRegistry()
	settings, loadErr := providerconfig.LoadFromDir(settingsPath)

	for _, provider := range providers.DefaultOrder {
		current, configured := settings[provider]
		if configured && !current.IsEnabled() {
			logger.Info("provider disabled by settings", "provider", provider.String())
			continue
		}

		adapter := build(provider, current, client, logger)
		if adapter == nil {
			logger.Warn("provider skipped, no primary_url configured", "provider", provider.String())
			continue
		}
		if err := registry.Register(adapter); err != nil && loadErr == nil {
			loadErr = fmt.Errorf("register provider %q: %w", provider, err)
		}
	}

	return registry, loadErr
}

func build(provider providers.Provider, settings providerconfig.Settings, client *http.Client, logger *slog.Logger) providers.Adapter {
	upstreamOpts := upstream.Options{
		PrimaryURL:        settings.PrimaryURL,
		MirrorURL:         settings.MirrorURL,
		Timeout:           settings.Timeout(),
		RequestsPerSecond: settings.RequestsPerSecond,
		Burst:             settings.Burst,
		Headers:           settings.Headers,
		HTTPClient:        client,
		Logger:            logger,
	}

	switch provider {
	case providers.ProviderAggregator:
		if settings.PrimaryURL == "" {
			return nil
		}
		return aggregator.New(aggregator.Options{
			Upstream:       upstreamOpts,
			ImageHeaders:   settings.ImageHeaders,
			SentinelImages: settings.SentinelImages,
			Logger:         logger,
		})
	case providers.ProviderCatalog:
		return catalog.New(catalog.Options{
			Upstream:       upstreamOpts,
			Path:           settings.Path,
			Language:       settings.Language,
			ImageHeaders:   settings.ImageHeaders,
			SentinelImages: settings.SentinelImages,
			Logger:         logger,
		})
	case providers.ProviderListing:
		if settings.PrimaryURL == "" {
			return nil
		}
		return listing.New(listing.Options{
			Upstream:       upstreamOpts,
			ImageHeaders:   settings.ImageHeaders,
			SentinelImages: settings.SentinelImages,
			Logger:         logger,
		})
	default:
		return nil
	}
}
