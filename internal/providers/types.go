package providers

import (
	"context"
	"strings"
	"time"
)

type Provider string

const (
	ProviderAggregator Provider = "aggregator"
	ProviderCatalog    Provider = "catalog"
	ProviderListing    Provider = "listing"
)

// DefaultOrder is the fallback order used when none is configured.
var DefaultOrder = []Provider{ProviderAggregator, ProviderCatalog, ProviderListing}

func (p Provider) String() string {
	return string(p)
}

func (p Provider) Valid() bool {
	switch p {
	case ProviderAggregator, ProviderCatalog, ProviderListing:
		return true
	default:
		return false
	}
}

// ParseProvider accepts case and whitespace variants of a provider key.
func ParseProvider(raw string) (Provider, bool) {
	candidate := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if !candidate.Valid() {
		return "", false
	}
	return candidate, true
}

type SearchResult struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Provider     Provider   `json:"provider"`
	CoverImage   string     `json:"coverImage,omitempty"`
	Status       string     `json:"status,omitempty"`
	Genres       []string   `json:"genres"`
	Summary      string     `json:"summary,omitempty"`
	ChapterCount *int       `json:"chapterCount,omitempty"`
	LastUpdated  *time.Time `json:"lastUpdated,omitempty"`
}

type Entry struct {
	ID              string     `json:"id"`
	Number          string     `json:"number"`
	Title           string     `json:"title"`
	ContentRef      string     `json:"contentRef"`
	Volume          string     `json:"volume,omitempty"`
	Pages           *int       `json:"pages,omitempty"`
	Language        string     `json:"language,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	ScanlationGroup string     `json:"scanlationGroup,omitempty"`
	IsLatest        bool       `json:"isLatest"`
	Provider        Provider   `json:"provider"`
}

type ContentLocation struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

type Preferences struct {
	DefaultProvider     Provider `json:"defaultProvider"`
	AutoFallbackEnabled bool     `json:"autoFallbackEnabled"`
	PreferredLanguage   string   `json:"preferredLanguage"`
}

type ListOptions struct {
	Language string
}

// EntryListing is what an adapter returns for a content id. CoverImage is set
// when the provider's detail response carries one.
type EntryListing struct {
	Entries    []Entry
	CoverImage string
}

// Adapter is the capability every content provider implements.
type Adapter interface {
	Provider() Provider
	Name() string
	HealthCheck(ctx context.Context) error
	Search(ctx context.Context, query string) ([]SearchResult, error)
	ListEntries(ctx context.Context, contentID string, opts ListOptions) (*EntryListing, error)
	GetContentLocations(ctx context.Context, entryID string) ([]ContentLocation, error)
}
