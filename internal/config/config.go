package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment          string
	AppName              string
	Port                 string
	LogLevel             slog.Level
	LogFile              string
	SQLitePath           string
	MigrationsPath       string
	ProvidersConfigPath  string
	ProviderOrder        []providers.Provider
	DefaultProvider      providers.Provider
	AutoFallback         bool
	PreferredLanguage    string
	HealthMonitorEnabled bool
	HealthMonitorMinutes int
	HealthWebhookURL     string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment:          getEnv("APP_ENV", "development"),
		AppName:              getEnv("APP_NAME", "content-resolver"),
		Port:                 getEnv("APP_PORT", "8080"),
		LogFile:              strings.TrimSpace(os.Getenv("LOG_FILE")),
		SQLitePath:           getEnv("SQLITE_PATH", "./data/app.sqlite"),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", "./migrations"),
		ProvidersConfigPath:  getEnv("PROVIDERS_CONFIG_PATH", "./configs/providers"),
		AutoFallback:         getEnvAsBool("AUTO_FALLBACK", true),
		PreferredLanguage:    getEnv("PREFERRED_LANGUAGE", "en"),
		HealthMonitorEnabled: getEnvAsBool("HEALTH_MONITOR_ENABLED", true),
		HealthMonitorMinutes: getEnvAsInt("HEALTH_MONITOR_MINUTES", 15),
		HealthWebhookURL:     strings.TrimSpace(os.Getenv("HEALTH_WEBHOOK_URL")),
	}

	if cfg.HealthMonitorMinutes <= 0 {
		cfg.HealthMonitorMinutes = 15
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	order, err := parseProviderOrder(getEnv("PROVIDER_ORDER", "aggregator,catalog,listing"))
	if err != nil {
		return Config{}, err
	}
	cfg.ProviderOrder = order

	defaultProvider, ok := providers.ParseProvider(getEnv("DEFAULT_PROVIDER", order[0].String()))
	if !ok {
		return Config{}, fmt.Errorf("invalid DEFAULT_PROVIDER %q, expected aggregator|catalog|listing", os.Getenv("DEFAULT_PROVIDER"))
	}
	cfg.DefaultProvider = defaultProvider

	return cfg, nil
}

// Preferences are the resolve defaults used when a profile has none stored.
func (c Config) Preferences() providers.Preferences {
	return providers.Preferences{
		DefaultProvider:     c.DefaultProvider,
		AutoFallbackEnabled: c.AutoFallback,
		PreferredLanguage:   c.PreferredLanguage,
	}
}

func parseProviderOrder(raw string) ([]providers.Provider, error) {
	order := make([]providers.Provider, 0, 3)
	seen := map[providers.Provider]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		provider, ok := providers.ParseProvider(part)
		if !ok {
			return nil, fmt.Errorf("invalid PROVIDER_ORDER entry %q, expected aggregator|catalog|listing", strings.TrimSpace(part))
		}
		if _, exists := seen[provider]; exists {
			continue
		}
		seen[provider] = struct{}{}
		order = append(order, provider)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("PROVIDER_ORDER must name at least one provider")
	}
	return order, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
