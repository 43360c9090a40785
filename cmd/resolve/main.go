package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gabriel/content-resolver/internal/config"
	"github.com/gabriel/content-resolver/internal/providers"
	providerdefaults "github.com/gabriel/content-resolver/internal/providers/defaults"
	"github.com/gabriel/content-resolver/internal/resolver"
)

type summary struct {
	Total    int
	Resolved int
	Failed   int
	Skipped  int
}

func main() {
	var (
		query          = flag.String("q", "", "Title to resolve")
		titlesFile     = flag.String("titles", "", "File with one title per line to resolve in bulk")
		providerFlag   = flag.String("provider", "", "Provider to try first (aggregator|catalog|listing)")
		autoFlag       = flag.String("auto", "", "Override automatic fallback (true|false)")
		lang           = flag.String("lang", "", "Preferred language for entry listings")
		entriesID      = flag.String("entries", "", "List entries for this content id on -provider")
		locationsID    = flag.String("locations", "", "List content locations for this entry id on -provider")
		settingsPath   = flag.String("config", "", "Provider settings directory (defaults to PROVIDERS_CONFIG_PATH)")
		resolveTimeout = flag.Duration("timeout", 60*time.Second, "Per-operation timeout")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	prefs, err := buildPreferences(cfg.Preferences(), *providerFlag, *autoFlag, *lang)
	if err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(2)
	}

	path := cfg.ProvidersConfigPath
	if strings.TrimSpace(*settingsPath) != "" {
		path = *settingsPath
	}
	registry, registryErr := providerdefaults.NewRegistry(path, nil, logger)
	if registryErr != nil {
		slog.Warn("provider registry loaded with warnings", "error", registryErr)
	}
	service := resolver.NewService(registry, resolver.Options{Order: cfg.ProviderOrder, Logger: logger})

	ctx, cancel := context.WithTimeout(context.Background(), *resolveTimeout)
	defer cancel()

	switch {
	case strings.TrimSpace(*entriesID) != "":
		listing, err := service.ListEntries(ctx, *entriesID, prefs.DefaultProvider, resolver.ListOptions{Language: prefs.PreferredLanguage})
		exitOnError("list entries failed", err)
		writeJSON(os.Stdout, listing)
	case strings.TrimSpace(*locationsID) != "":
		locations, err := service.GetContentLocations(ctx, *locationsID, prefs.DefaultProvider)
		exitOnError("list content locations failed", err)
		writeJSON(os.Stdout, locations)
	case strings.TrimSpace(*titlesFile) != "":
		file, err := os.Open(*titlesFile)
		exitOnError("open titles file failed", err)
		defer file.Close()

		stats, err := resolveAll(*resolveTimeout, service, prefs, readTitles(file), os.Stdout)
		exitOnError("bulk resolve failed", err)
		slog.Info(
			"bulk resolve completed",
			"total", stats.Total,
			"resolved", stats.Resolved,
			"failed", stats.Failed,
			"skipped", stats.Skipped,
		)
	default:
		if strings.TrimSpace(*query) == "" {
			flag.Usage()
			os.Exit(2)
		}
		outcome, err := service.Resolve(ctx, *query, prefs)
		if err != nil {
			var exhausted *providers.AllProvidersExhaustedError
			if errors.As(err, &exhausted) {
				fmt.Fprintln(os.Stderr, exhausted.Message)
				os.Exit(1)
			}
			exitOnError("resolve failed", err)
		}
		writeJSON(os.Stdout, outcome)
	}
}

func buildPreferences(defaults providers.Preferences, rawProvider string, rawAuto string, lang string) (providers.Preferences, error) {
	prefs := defaults
	if strings.TrimSpace(rawProvider) != "" {
		provider, ok := providers.ParseProvider(rawProvider)
		if !ok {
			return providers.Preferences{}, fmt.Errorf("unknown provider %q", rawProvider)
		}
		prefs.DefaultProvider = provider
	}
	if strings.TrimSpace(rawAuto) != "" {
		switch strings.ToLower(strings.TrimSpace(rawAuto)) {
		case "true", "1", "yes":
			prefs.AutoFallbackEnabled = true
		case "false", "0", "no":
			prefs.AutoFallbackEnabled = false
		default:
			return providers.Preferences{}, fmt.Errorf("auto must be true or false, got %q", rawAuto)
		}
	}
	if trimmed := strings.TrimSpace(lang); trimmed != "" {
		prefs.PreferredLanguage = trimmed
	}
	return prefs, nil
}

// readTitles returns non-blank lines, skipping # comments.
func readTitles(r io.Reader) []string {
	titles := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, line)
	}
	return titles
}

type bulkLine struct {
	Query    string                  `json:"query"`
	Provider providers.Provider      `json:"provider,omitempty"`
	Best     *providers.SearchResult `json:"best,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

type titleResolver interface {
	Resolve(ctx context.Context, query string, prefs providers.Preferences) (*resolver.Outcome, error)
}

// resolveAll writes one JSON line per title. Per-title failures are counted,
// only write errors abort the run.
func resolveAll(timeout time.Duration, service titleResolver, prefs providers.Preferences, titles []string, out io.Writer) (summary, error) {
	stats := summary{}
	encoder := json.NewEncoder(out)
	for _, title := range titles {
		stats.Total++

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		outcome, err := service.Resolve(ctx, title, prefs)
		cancel()

		line := bulkLine{Query: title}
		switch {
		case errors.Is(err, providers.ErrEmptyQuery):
			stats.Skipped++
			continue
		case err != nil:
			stats.Failed++
			var exhausted *providers.AllProvidersExhaustedError
			if errors.As(err, &exhausted) {
				line.Error = exhausted.Message
			} else {
				line.Error = err.Error()
			}
		default:
			stats.Resolved++
			line.Provider = outcome.Provider
			if len(outcome.Results) > 0 {
				best := outcome.Results[0]
				line.Best = &best
			}
		}

		if err := encoder.Encode(line); err != nil {
			return stats, fmt.Errorf("write result for %q: %w", title, err)
		}
	}
	return stats, nil
}

func writeJSON(w io.Writer, value any) {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		slog.Error("failed to write output", "error", err)
		os.Exit(1)
	}
}

func exitOnError(message string, err error) {
	if err == nil {
		return
	}
	slog.Error(message, "error", err)
	os.Exit(1)
}
