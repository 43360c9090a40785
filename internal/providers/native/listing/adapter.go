package listing

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gabriel/content-resolver/internal/providers/upstream"
	"github.com/tidwall/gjson"
)

var defaultSentinelImages = []string{"no-more-chapter", "nomorechapter", "end-of-chapter", "next-chapter-banner"}

type Options struct {
	Upstream       upstream.Options
	ImageHeaders   map[string]string
	SentinelImages []string
	Logger         *slog.Logger
}

// Adapter talks to a listing-style scraper API: /search/<q>, /manga/<id> and
// /manga/page?id=<chapter>.
type Adapter struct {
	client         *upstream.Client
	imageHeaders   map[string]string
	sentinelImages []string
	logger         *slog.Logger
}

func New(opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Upstream.Provider = providers.ProviderListing
	if opts.Upstream.Logger == nil {
		opts.Upstream.Logger = logger
	}

	sentinels := opts.SentinelImages
	if len(sentinels) == 0 {
		sentinels = defaultSentinelImages
	}

	return &Adapter{
		client:         upstream.NewClient(opts.Upstream),
		imageHeaders:   providers.CloneHeaders(opts.ImageHeaders),
		sentinelImages: sentinels,
		logger:         logger.With("provider", providers.ProviderListing.String()),
	}
}

func (a *Adapter) Provider() providers.Provider {
	return providers.ProviderListing
}

func (a *Adapter) Name() string {
	return "Listing"
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *Adapter) Search(ctx context.Context, query string) ([]providers.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, providers.ErrEmptyQuery
	}

	root, err := a.client.GetJSON(ctx, "/search/"+url.PathEscape(trimmed))
	if err != nil {
		return providers.SoftenSearchError(a.logger, trimmed, err)
	}

	items, ok := providers.FirstArray(root, "list", "data.list", "results", "data", "")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "search", "no list array")
		return []providers.SearchResult{}, nil
	}

	results := make([]providers.SearchResult, 0, len(items.Array()))
	for _, item := range items.Array() {
		id := providers.FirstString(item, "id", "slug", "mangaId")
		title := providers.FirstString(item, "title", "name")
		if id == "" || title == "" {
			continue
		}
		results = append(results, providers.SearchResult{
			ID:           id,
			Title:        title,
			Provider:     a.Provider(),
			CoverImage:   providers.AbsoluteURL(a.client.PrimaryURL(), providers.FirstString(item, "image", "imageUrl", "cover", "thumbnail")),
			Status:       providers.FirstString(item, "status"),
			Genres:       providers.StringList(item, "genres", "genre"),
			Summary:      providers.FirstString(item, "description", "summary"),
			ChapterCount: providers.FirstInt(item, "chapterCount", "chapters"),
			LastUpdated:  providers.FirstTime(item, "updated", "lastUpdated", "updatedAt"),
		})
	}

	return results, nil
}

func (a *Adapter) ListEntries(ctx context.Context, contentID string, opts providers.ListOptions) (*providers.EntryListing, error) {
	id := strings.TrimSpace(contentID)
	if id == "" {
		return nil, fmt.Errorf("content id is required")
	}

	root, err := a.client.GetJSON(ctx, "/manga/"+url.PathEscape(id))
	if err != nil {
		if providers.IsMalformed(err) {
			a.logger.Warn("manga response could not be normalized", "contentId", id, "error", err)
			return &providers.EntryListing{Entries: []providers.Entry{}}, nil
		}
		return nil, fmt.Errorf("list listing entries: %w", err)
	}

	listing := &providers.EntryListing{
		Entries:    []providers.Entry{},
		CoverImage: providers.AbsoluteURL(a.client.PrimaryURL(), providers.FirstString(root, "imageUrl", "image", "data.imageUrl", "data.image")),
	}

	chapters, ok := providers.FirstArray(root, "chapters", "data.chapters", "chapterList", "chapter_list", "")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "manga "+id, "no chapters array")
		return listing, nil
	}

	for index, item := range chapters.Array() {
		entry, ok := a.mapEntry(item, index+1)
		if !ok {
			continue
		}
		if opts.Language != "" && entry.Language != "" && !strings.EqualFold(entry.Language, opts.Language) {
			continue
		}
		listing.Entries = append(listing.Entries, entry)
	}
	providers.SortEntries(listing.Entries)
	providers.MarkLatest(listing.Entries)

	return listing, nil
}

func (a *Adapter) GetContentLocations(ctx context.Context, entryID string) ([]providers.ContentLocation, error) {
	id := strings.TrimSpace(entryID)
	if id == "" {
		return nil, fmt.Errorf("entry id is required")
	}

	values := url.Values{}
	values.Set("id", id)
	root, err := a.client.GetJSON(ctx, "/manga/page?"+values.Encode())
	if err != nil {
		if providers.IsMalformed(err) {
			a.logger.Warn("page response could not be normalized", "entryId", id, "error", err)
			return []providers.ContentLocation{}, nil
		}
		return nil, fmt.Errorf("get listing pages: %w", err)
	}

	pages, ok := providers.FirstArray(root, "pages", "data.pages", "images", "")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "page "+id, "no pages array")
		return []providers.ContentLocation{}, nil
	}

	locations := make([]providers.ContentLocation, 0, len(pages.Array()))
	for _, page := range pages.Array() {
		raw := page.String()
		if page.IsObject() {
			raw = providers.FirstString(page, "image", "url", "src", "img")
		}
		absolute := providers.AbsoluteURL(a.client.PrimaryURL(), raw)
		if absolute == "" || providers.IsSentinelImage(absolute, a.sentinelImages) {
			continue
		}
		locations = append(locations, providers.ContentLocation{
			URL:     absolute,
			Headers: providers.CloneHeaders(a.imageHeaders),
		})
	}

	return locations, nil
}

func (a *Adapter) mapEntry(item gjson.Result, position int) (providers.Entry, bool) {
	id := providers.FirstString(item, "id", "chapterId", "slug")
	path := providers.FirstString(item, "path", "url")
	if id == "" {
		id = path
	}
	if id == "" {
		return providers.Entry{}, false
	}
	if path == "" {
		path = id
	}

	rawTitle := providers.FirstString(item, "name", "title")
	number := providers.ChapterNumber(providers.FirstString(item, "number", "chapterNumber"), rawTitle, position)

	return providers.Entry{
		ID:         id,
		Number:     number,
		Title:      providers.EntryTitle(rawTitle, number),
		ContentRef: path,
		Volume:     providers.FirstString(item, "volume"),
		Pages:      providers.FirstInt(item, "pages"),
		Language:   providers.FirstString(item, "language", "lang"),
		UpdatedAt:  providers.FirstTime(item, "createdAt", "updated", "date"),
		Provider:   a.Provider(),
	}, true
}
