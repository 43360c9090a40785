package aggregator

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

var defaultSentinelImages = []string{"no-more-chapter", "nomorechapter", "end-of-chapter"}

type Options struct {
	Upstream       upstream.Options
	ImageHeaders   map[string]string
	SentinelImages []string
	Logger         *slog.Logger
}

// Adapter talks to the aggregator search API. Responses come wrapped in a
// {success, data} envelope; chapter pages are served by the same /series
// endpoint addressed with the chapter path.
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
	opts.Upstream.Provider = providers.ProviderAggregator
	if opts.Upstream.Logger == nil {
		opts.Upstream.Logger = logger
	}
	client := upstream.NewClient(opts.Upstream)

	imageHeaders := providers.CloneHeaders(opts.ImageHeaders)
	if imageHeaders == nil && client.PrimaryURL() != "" {
		imageHeaders = map[string]string{"Referer": client.PrimaryURL() + "/"}
	}
	sentinels := opts.SentinelImages
	if len(sentinels) == 0 {
		sentinels = defaultSentinelImages
	}

	return &Adapter{
		client:         client,
		imageHeaders:   imageHeaders,
		sentinelImages: sentinels,
		logger:         logger.With("provider", providers.ProviderAggregator.String()),
	}
}

func (a *Adapter) Provider() providers.Provider {
	return providers.ProviderAggregator
}

func (a *Adapter) Name() string {
	return "Aggregator"
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *Adapter) Search(ctx context.Context, query string) ([]providers.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, providers.ErrEmptyQuery
	}

	values := url.Values{}
	values.Set("search", trimmed)
	values.Set("search_by", "book_name")

	root, err := a.client.GetJSON(ctx, "/search?"+values.Encode())
	if err != nil {
		return providers.SoftenSearchError(a.logger, trimmed, err)
	}
	if providers.EnvelopeFailed(root) {
		a.logger.Warn("search envelope reported failure", "query", trimmed, "message", root.Get("message").String())
		return []providers.SearchResult{}, nil
	}

	items, ok := providers.FirstArray(root, "data.results", "data.data", "data", "results")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "search", "no results array")
		return []providers.SearchResult{}, nil
	}

	results := make([]providers.SearchResult, 0, len(items.Array()))
	for _, item := range items.Array() {
		id := providers.FirstString(item, "id", "slug", "book_id", "bookId")
		title := providers.FirstString(item, "title", "name", "book_name", "bookName")
		if id == "" || title == "" {
			continue
		}
		results = append(results, providers.SearchResult{
			ID:           id,
			Title:        title,
			Provider:     a.Provider(),
			CoverImage:   providers.AbsoluteURL(a.client.PrimaryURL(), providers.FirstString(item, "thumbnail", "cover", "image", "coverImage")),
			Status:       providers.FirstString(item, "status"),
			Genres:       providers.StringList(item, "genres", "genre", "tags"),
			Summary:      providers.FirstString(item, "summary", "description", "synopsis"),
			ChapterCount: providers.FirstInt(item, "chapterCount", "total_chapters", "chapters_count", "chapters"),
			LastUpdated:  providers.FirstTime(item, "lastUpdated", "updated_at", "updatedAt", "last_update"),
		})
	}

	return results, nil
}

func (a *Adapter) ListEntries(ctx context.Context, contentID string, opts providers.ListOptions) (*providers.EntryListing, error) {
	id := strings.TrimSpace(contentID)
	if id == "" {
		return nil, fmt.Errorf("content id is required")
	}

	root, err := a.client.GetJSON(ctx, "/series/"+providers.EscapePathSegments(id))
	if err != nil {
		if providers.IsMalformed(err) {
			a.logger.Warn("series response could not be normalized", "contentId", id, "error", err)
			return &providers.EntryListing{Entries: []providers.Entry{}}, nil
		}
		return nil, fmt.Errorf("list aggregator entries: %w", err)
	}

	listing := &providers.EntryListing{
		Entries:    []providers.Entry{},
		CoverImage: providers.AbsoluteURL(a.client.PrimaryURL(), providers.FirstString(root, "data.thumbnail", "data.cover", "data.image", "data.coverImage")),
	}
	if providers.EnvelopeFailed(root) {
		a.logger.Warn("series envelope reported failure", "contentId", id, "message", root.Get("message").String())
		return listing, nil
	}

	chapters, ok := providers.FirstArray(root, "data.chapters", "data.chapterList", "chapters", "data")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "series "+id, "no chapters array")
		return listing, nil
	}

	for index, item := range chapters.Array() {
		if entry, ok := a.mapEntry(item, index+1, opts); ok {
			listing.Entries = append(listing.Entries, entry)
		}
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

	root, err := a.client.GetJSON(ctx, "/series/"+providers.EscapePathSegments(id))
	if err != nil {
		if providers.IsMalformed(err) {
			a.logger.Warn("chapter response could not be normalized", "entryId", id, "error", err)
			return []providers.ContentLocation{}, nil
		}
		return nil, fmt.Errorf("get aggregator pages: %w", err)
	}
	if providers.EnvelopeFailed(root) {
		a.logger.Warn("chapter envelope reported failure", "entryId", id, "message", root.Get("message").String())
		return []providers.ContentLocation{}, nil
	}

	images, ok := providers.FirstArray(root, "data.imageUrls", "data.images", "imageUrls", "images", "data.pages")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "chapter "+id, "no image array")
		return []providers.ContentLocation{}, nil
	}

	locations := make([]providers.ContentLocation, 0, len(images.Array()))
	for _, image := range images.Array() {
		raw := image.String()
		if image.IsObject() {
			raw = providers.FirstString(image, "url", "src", "image", "img")
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

func (a *Adapter) mapEntry(item gjson.Result, position int, opts providers.ListOptions) (providers.Entry, bool) {
	ref := providers.FirstString(item, "url", "slug", "path", "link")
	id := providers.FirstString(item, "id", "chapterId", "chapter_id")
	if id == "" {
		id = ref
	}
	if id == "" {
		return providers.Entry{}, false
	}
	if ref == "" {
		ref = id
	}

	language := providers.FirstString(item, "language", "lang")
	if opts.Language != "" && language != "" && !strings.EqualFold(language, opts.Language) {
		return providers.Entry{}, false
	}

	rawTitle := providers.FirstString(item, "title", "name", "chapterTitle", "chapter_title")
	number := providers.ChapterNumber(providers.FirstString(item, "number", "chapterNumber", "chapter_number"), rawTitle, position)

	return providers.Entry{
		ID:              id,
		Number:          number,
		Title:           providers.EntryTitle(rawTitle, number),
		ContentRef:      ref,
		Volume:          providers.FirstString(item, "volume", "vol"),
		Pages:           providers.FirstInt(item, "pages", "pageCount", "page_count"),
		Language:        language,
		UpdatedAt:       providers.FirstTime(item, "updatedAt", "updated_at", "date", "uploadedAt"),
		ScanlationGroup: providers.FirstString(item, "group", "scanlationGroup", "scanlator"),
		Provider:        a.Provider(),
	}, true
}
