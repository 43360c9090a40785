package resolver

import (
	"fmt"

	"github.com/gabriel/content-resolver/internal/providers"
)

const genericFailure = "We couldn't find this title on any source right now. Please try again later."

// DescribeFailure returns the message shown when a resolve finds nothing.
// provider is the source tried first. With auto-fallback off it was the only
// one tried; with it on the message says the other sources were searched too.
func DescribeFailure(provider providers.Provider, autoFallbackEnabled bool) string {
	if autoFallbackEnabled {
		if !provider.Valid() {
			return genericFailure
		}
		return fmt.Sprintf("We couldn't find this title on the %s source or any fallback source. Try a shorter or alternate title.", provider)
	}

	switch provider {
	case providers.ProviderAggregator:
		return "The aggregator source didn't return this title. Turn on automatic fallback to search the other sources."
	case providers.ProviderCatalog:
		return "The catalog source didn't return this title. Turn on automatic fallback or pick another source."
	case providers.ProviderListing:
		return "The listing source didn't return this title. Turn on automatic fallback or pick another source."
	default:
		return genericFailure
	}
}
