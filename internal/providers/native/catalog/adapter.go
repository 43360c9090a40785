package catalog

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

const (
	DefaultBaseURL  = "https://api.consumet.org"
	defaultPath     = "manga/mangadex"
	defaultLanguage = "en"
)

// Placeholder pages the proxy appends when a scanlation is incomplete.
var defaultSentinelImages = []string{"no-more-chapter", "nomorechapter", "end-of-chapter", "placeholder-page"}

type Options struct {
	Upstream       upstream.Options
	Path           string
	Language       string
	ImageHeaders   map[string]string
	SentinelImages []string
	Logger         *slog.Logger
}

// Adapter talks to a catalog proxy that fronts several sources under a
// provider path, e.g. /manga/mangadex/<query>.
type Adapter struct {
	client         *upstream.Client
	path           string
	language       string
	imageHeaders   map[string]string
	sentinelImages []string
	logger         *slog.Logger
}

func New(opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(opts.Upstream.PrimaryURL) == "" {
		opts.Upstream.PrimaryURL = DefaultBaseURL
	}
	opts.Upstream.Provider = providers.ProviderCatalog
	if opts.Upstream.Logger == nil {
		opts.Upstream.Logger = logger
	}

	path := strings.Trim(strings.TrimSpace(opts.Path), "/")
	if path == "" {
		path = defaultPath
	}
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = defaultLanguage
	}

	sentinels := opts.SentinelImages
	if len(sentinels) == 0 {
		sentinels = defaultSentinelImages
	}

	return &Adapter{
		client:         upstream.NewClient(opts.Upstream),
		path:           path,
		language:       language,
		imageHeaders:   providers.CloneHeaders(opts.ImageHeaders),
		sentinelImages: sentinels,
		logger:         logger.With("provider", providers.ProviderCatalog.String()),
	}
}

func (a *Adapter) Provider() providers.Provider {
	return providers.ProviderCatalog
}

func (a *Adapter) Name() string {
	return "Catalog"
}

func (a *Adapter) HealthCheck(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *Adapter) Search(ctx context.Context, query string) ([]providers.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, providers.ErrEmptyQuery
	}

	root, err := a.client.GetJSON(ctx, "/"+a.path+"/"+url.PathEscape(trimmed))
	if err != nil {
		return providers.SoftenSearchError(a.logger, trimmed, err)
	}

	items, ok := providers.FirstArray(root, "results", "data.results", "data", "")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "search", "no results array")
		return []providers.SearchResult{}, nil
	}

	results := make([]providers.SearchResult, 0, len(items.Array()))
	for _, item := range items.Array() {
		id := providers.FirstString(item, "id", "mangaId")
		title := localizedTitle(item)
		if id == "" || title == "" {
			continue
		}
		results = append(results, providers.SearchResult{
			ID:           id,
			Title:        title,
			Provider:     a.Provider(),
			CoverImage:   providers.AbsoluteURL(a.client.PrimaryURL(), providers.FirstString(item, "image", "cover", "img")),
			Status:       providers.FirstString(item, "status"),
			Genres:       providers.StringList(item, "genres", "tags"),
			Summary:      localizedField(item.Get("description")),
			ChapterCount: providers.FirstInt(item, "totalChapters", "lastChapter"),
			LastUpdated:  providers.FirstTime(item, "lastUpdated", "updatedAt"),
		})
	}

	return results, nil
}

func (a *Adapter) ListEntries(ctx context.Context, contentID string, opts providers.ListOptions) (*providers.EntryListing, error) {
	id := strings.TrimSpace(contentID)
	if id == "" {
		return nil, fmt.Errorf("content id is required")
	}
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = a.language
	}

	values := url.Values{}
	values.Set("lang", language)
	root, err := a.client.GetJSON(ctx, "/"+a.path+"/info/"+url.PathEscape(id)+"?"+values.Encode())
	if err != nil {
		if providers.IsMalformed(err) {
			a.logger.Warn("info response could not be normalized", "contentId", id, "error", err)
			return &providers.EntryListing{Entries: []providers.Entry{}}, nil
		}
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}

	listing := &providers.EntryListing{
		Entries:    []providers.Entry{},
		CoverImage: providers.AbsoluteURL(a.client.PrimaryURL(), providers.FirstString(root, "image", "cover", "data.image")),
	}

	chapters, ok := providers.FirstArray(root, "chapters", "data.chapters", "")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "info "+id, "no chapters array")
		return listing, nil
	}

	for index, item := range chapters.Array() {
		entry, ok := a.mapEntry(item, index+1)
		if !ok {
			continue
		}
		if entry.Language != "" && !strings.EqualFold(entry.Language, language) {
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

	root, err := a.client.GetJSON(ctx, "/"+a.path+"/read/"+url.PathEscape(id))
	if err != nil {
		if providers.IsMalformed(err) {
			a.logger.Warn("read response could not be normalized", "entryId", id, "error", err)
			return []providers.ContentLocation{}, nil
		}
		return nil, fmt.Errorf("get catalog pages: %w", err)
	}

	pages, ok := providers.FirstArray(root, "", "pages", "data", "data.pages")
	if !ok {
		providers.WarnMalformed(a.logger, a.Provider(), "read "+id, "no pages array")
		return []providers.ContentLocation{}, nil
	}

	locations := make([]providers.ContentLocation, 0, len(pages.Array()))
	for _, page := range pages.Array() {
		raw := page.String()
		if page.IsObject() {
			raw = providers.FirstString(page, "img", "url", "image")
		}
		absolute := providers.AbsoluteURL(a.client.PrimaryURL(), raw)
		if absolute == "" || providers.IsSentinelImage(absolute, a.sentinelImages) {
			continue
		}
		locations = append(locations, providers.ContentLocation{
			URL:     absolute,
			Headers: a.pageHeaders(page),
		})
	}

	return locations, nil
}

// pageHeaders merges the proxy's per-page headerForImage over the configured
// image headers.
func (a *Adapter) pageHeaders(page gjson.Result) map[string]string {
	headers := providers.CloneHeaders(a.imageHeaders)
	extra := page.Get("headerForImage")
	if !extra.IsObject() {
		return headers
	}
	extra.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String || strings.TrimSpace(value.Str) == "" {
			return true
		}
		if headers == nil {
			headers = map[string]string{}
		}
		headers[key.String()] = value.Str
		return true
	})
	return headers
}

func (a *Adapter) mapEntry(item gjson.Result, position int) (providers.Entry, bool) {
	id := providers.FirstString(item, "id", "chapterId")
	if id == "" {
		return providers.Entry{}, false
	}

	rawTitle := providers.FirstString(item, "title", "name")
	number := providers.ChapterNumber(providers.FirstString(item, "chapterNumber", "number", "chapter"), rawTitle, position)

	return providers.Entry{
		ID:              id,
		Number:          number,
		Title:           providers.EntryTitle(rawTitle, number),
		ContentRef:      id,
		Volume:          providers.FirstString(item, "volumeNumber", "volume"),
		Pages:           providers.FirstInt(item, "pages", "pageCount"),
		Language:        providers.FirstString(item, "lang", "language", "translatedLanguage"),
		UpdatedAt:       providers.FirstTime(item, "releaseDate", "releasedDate", "publishAt", "updatedAt"),
		ScanlationGroup: providers.FirstString(item, "scanlationGroup", "group"),
		Provider:        a.Provider(),
	}, true
}

// localizedTitle reads a title that is either a plain string or a map of
// language codes to strings.
func localizedTitle(item gjson.Result) string {
	if title := localizedField(item.Get("title")); title != "" {
		return title
	}
	return providers.FirstString(item, "name", "altTitles.0")
}

func localizedField(value gjson.Result) string {
	if value.Type == gjson.String {
		return strings.TrimSpace(value.Str)
	}
	if !value.IsObject() {
		return ""
	}
	if preferred := providers.FirstString(value, "en", "ja-ro", "ja", "ko-ro", "ko"); preferred != "" {
		return preferred
	}
	var first string
	value.ForEach(func(_, entry gjson.Result) bool {
		if entry.Type == gjson.String && strings.TrimSpace(entry.Str) != "" {
			first = strings.TrimSpace(entry.Str)
			return false
		}
		return true
	})
	return first
}
