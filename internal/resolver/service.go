package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gabriel/content-resolver/internal/searchutil"
	"github.com/google/uuid"
)

const (
	VariantKeyword    = "keyword"
	VariantNormalized = "normalized"
	VariantRaw        = "raw"
)

type Variant struct {
	Kind  string `json:"kind"`
	Query string `json:"query"`
}

// Attempt records one adapter search made while resolving.
type Attempt struct {
	Provider providers.Provider `json:"provider"`
	Variant  string             `json:"variant"`
	Query    string             `json:"query"`
	Results  int                `json:"results"`
	Error    string             `json:"error,omitempty"`
}

type Outcome struct {
	Results  []providers.SearchResult `json:"results"`
	Provider providers.Provider       `json:"provider"`
	Variant  string                   `json:"variant"`
	Attempts []Attempt                `json:"attempts"`
}

type Listing struct {
	Provider   providers.Provider `json:"provider"`
	CoverImage string             `json:"coverImage,omitempty"`
	Entries    []providers.Entry  `json:"entries"`
}

type ListOptions struct {
	CoverImage string
	Language   string
}

type Options struct {
	Order  []providers.Provider
	Logger *slog.Logger
}

// Service resolves titles against the registered adapters. It holds no
// per-call state, so one Service can serve concurrent callers.
type Service struct {
	registry *providers.Registry
	order    []providers.Provider
	logger   *slog.Logger
}

func NewService(registry *providers.Registry, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	order := make([]providers.Provider, 0, len(opts.Order))
	seen := map[providers.Provider]struct{}{}
	for _, provider := range opts.Order {
		if _, exists := seen[provider]; exists || !provider.Valid() {
			continue
		}
		seen[provider] = struct{}{}
		order = append(order, provider)
	}
	if len(order) == 0 {
		order = append(order, providers.DefaultOrder...)
	}

	return &Service{registry: registry, order: order, logger: logger}
}

func (s *Service) Order() []providers.Provider {
	return append([]providers.Provider(nil), s.order...)
}

// Candidates is the provider sequence a resolve will try: only the default
// provider when auto-fallback is off, otherwise the configured order with the
// default moved to the front.
func (s *Service) Candidates(prefs providers.Preferences) []providers.Provider {
	defaultProvider := prefs.DefaultProvider
	if !defaultProvider.Valid() {
		defaultProvider = s.order[0]
	}
	if !prefs.AutoFallbackEnabled {
		return []providers.Provider{defaultProvider}
	}

	candidates := make([]providers.Provider, 0, len(s.order)+1)
	candidates = append(candidates, defaultProvider)
	for _, provider := range s.order {
		if provider != defaultProvider {
			candidates = append(candidates, provider)
		}
	}
	return candidates
}

// Variants builds the ordered search strings for a query: the extracted
// keyword, the normalized title when it differs, then the raw query when it
// differs from both.
func Variants(query string) []Variant {
	raw := strings.TrimSpace(query)
	keyword := searchutil.ExtractKeyword(raw)
	normalized := searchutil.Normalize(raw)

	variants := make([]Variant, 0, 3)
	if keyword != "" {
		variants = append(variants, Variant{Kind: VariantKeyword, Query: keyword})
	}
	if normalized != "" && normalized != keyword {
		variants = append(variants, Variant{Kind: VariantNormalized, Query: normalized})
	}
	if raw != "" && raw != keyword && raw != normalized {
		variants = append(variants, Variant{Kind: VariantRaw, Query: raw})
	}
	return variants
}

// Resolve searches the candidate providers in order and returns the first
// non-empty result set, ranked by similarity to query. Providers are tried
// sequentially and a success stops the chain.
func (s *Service) Resolve(ctx context.Context, query string, prefs providers.Preferences) (*Outcome, error) {
	variants := Variants(query)
	if len(variants) == 0 {
		return nil, providers.ErrEmptyQuery
	}

	candidates := s.Candidates(prefs)
	logger := s.logger.With("resolveId", uuid.NewString(), "auto", prefs.AutoFallbackEnabled)
	started := time.Now()

	attempts := make([]Attempt, 0, len(candidates)*len(variants))
	attempted := make([]providers.Provider, 0, len(candidates))
	var lastErr error

	for _, provider := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempted = append(attempted, provider)

		adapter, ok := s.registry.Get(provider)
		if !ok {
			lastErr = fmt.Errorf("%w: %s", providers.ErrUnknownProvider, provider)
			logger.Warn("provider not registered", "provider", provider.String())
			if !prefs.AutoFallbackEnabled {
				break
			}
			continue
		}

		var providerErr error
		for _, variant := range variants {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			results, err := adapter.Search(ctx, variant.Query)
			attempt := Attempt{Provider: provider, Variant: variant.Kind, Query: variant.Query, Results: len(results)}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return nil, ctxErr
				}
				attempt.Error = err.Error()
				attempts = append(attempts, attempt)
				providerErr = err
				logger.Warn("provider search failed", "provider", provider.String(), "variant", variant.Kind, "error", err)
				break
			}
			attempts = append(attempts, attempt)

			if len(results) > 0 {
				ranked := rankResults(query, results)
				logger.Info("resolve succeeded",
					"provider", provider.String(),
					"variant", variant.Kind,
					"results", len(ranked),
					"elapsed", time.Since(started).String(),
				)
				return &Outcome{Results: ranked, Provider: provider, Variant: variant.Kind, Attempts: attempts}, nil
			}
		}

		if providerErr != nil {
			lastErr = providerErr
		} else {
			lastErr = &providers.EmptyResultError{Provider: provider, Query: query}
			logger.Info("provider returned no results", "provider", provider.String())
		}

		if !prefs.AutoFallbackEnabled {
			break
		}
	}

	failureProvider := prefs.DefaultProvider
	if len(attempted) > 0 {
		failureProvider = attempted[0]
	}
	logger.Warn("resolve exhausted providers", "attempted", len(attempted), "error", lastErr, "elapsed", time.Since(started).String())
	return nil, &providers.AllProvidersExhaustedError{
		Attempted: attempted,
		Last:      lastErr,
		Message:   DescribeFailure(failureProvider, prefs.AutoFallbackEnabled),
	}
}

// ListEntries dispatches straight to provider's adapter. Every returned entry
// carries provider so later location lookups go back to the same adapter.
func (s *Service) ListEntries(ctx context.Context, contentID string, provider providers.Provider, opts ListOptions) (*Listing, error) {
	adapter, err := s.adapter(provider)
	if err != nil {
		return nil, err
	}

	result, err := adapter.ListEntries(ctx, contentID, providers.ListOptions{Language: opts.Language})
	if err != nil {
		return nil, err
	}

	listing := &Listing{Provider: adapter.Provider(), CoverImage: strings.TrimSpace(opts.CoverImage), Entries: []providers.Entry{}}
	if result == nil {
		return listing, nil
	}
	if result.CoverImage != "" {
		listing.CoverImage = result.CoverImage
	}
	for _, entry := range result.Entries {
		entry.Provider = adapter.Provider()
		listing.Entries = append(listing.Entries, entry)
	}
	return listing, nil
}

func (s *Service) GetContentLocations(ctx context.Context, entryID string, provider providers.Provider) ([]providers.ContentLocation, error) {
	adapter, err := s.adapter(provider)
	if err != nil {
		return nil, err
	}

	locations, err := adapter.GetContentLocations(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if locations == nil {
		locations = []providers.ContentLocation{}
	}
	return locations, nil
}

// GetEntryContentLocations uses the provider recorded on entry.
func (s *Service) GetEntryContentLocations(ctx context.Context, entry providers.Entry) ([]providers.ContentLocation, error) {
	return s.GetContentLocations(ctx, entry.ID, entry.Provider)
}

func (s *Service) adapter(provider providers.Provider) (providers.Adapter, error) {
	adapter, ok := s.registry.Get(provider)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrUnknownProvider, provider)
	}
	return adapter, nil
}

func rankResults(query string, results []providers.SearchResult) []providers.SearchResult {
	type scored struct {
		result providers.SearchResult
		score  int
	}

	items := make([]scored, 0, len(results))
	for _, result := range results {
		items = append(items, scored{result: result, score: searchutil.Score(query, result.Title)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	ranked := make([]providers.SearchResult, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, item.result)
	}
	return ranked
}
