package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 10 * time.Second
	maxBodyBytes    = 8 << 20
	defaultAccept   = "application/json, text/plain;q=0.9, */*;q=0.8"
	defaultAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultRPS      = 4
	defaultBurst    = 4
	endpointPrimary = "primary"
	endpointMirror  = "mirror"
)

type Options struct {
	Provider          providers.Provider
	PrimaryURL        string
	MirrorURL         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Headers           map[string]string
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client fetches JSON from a provider, falling back from the primary base URL
// to the mirror when the primary fails. The mirror is tried at most once.
type Client struct {
	provider   providers.Provider
	primaryURL string
	mirrorURL  string
	timeout    time.Duration
	headers    map[string]string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	primary := strings.TrimRight(strings.TrimSpace(opts.PrimaryURL), "/")
	mirror := strings.TrimRight(strings.TrimSpace(opts.MirrorURL), "/")
	if mirror == primary {
		mirror = ""
	}

	return &Client{
		provider:   opts.Provider,
		primaryURL: primary,
		mirrorURL:  mirror,
		timeout:    timeout,
		headers:    providers.CloneHeaders(opts.Headers),
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger.With("provider", opts.Provider.String()),
	}
}

func (c *Client) PrimaryURL() string {
	return c.primaryURL
}

func (c *Client) HasMirror() bool {
	return c.mirrorURL != ""
}

// GetJSON requests path (with query string) and returns the parsed body. It
// returns *providers.TransportError or *providers.MalformedResponseError once
// every configured endpoint has failed, or the context error on cancellation.
func (c *Client) GetJSON(ctx context.Context, path string) (gjson.Result, error) {
	result, err := c.fetch(ctx, endpointPrimary, c.primaryURL, path)
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return gjson.Result{}, ctxErr
	}
	if c.mirrorURL == "" {
		return gjson.Result{}, err
	}

	c.logger.Warn("primary endpoint failed, trying mirror", "path", path, "error", err)
	result, mirrorErr := c.fetch(ctx, endpointMirror, c.mirrorURL, path)
	if mirrorErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return gjson.Result{}, ctxErr
		}
		return gjson.Result{}, mirrorErr
	}
	return result, nil
}

// Ping issues a GET against the primary base URL; any HTTP response below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c.primaryURL == "" {
		return fmt.Errorf("%s: primary url is not configured", c.provider)
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, c.primaryURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	c.applyHeaders(req)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &providers.TransportError{Provider: c.provider, Endpoint: endpointPrimary, Err: err}
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxBodyBytes))

	if res.StatusCode >= 500 {
		return &providers.TransportError{Provider: c.provider, Endpoint: endpointPrimary, StatusCode: res.StatusCode}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, baseURL string, path string) (gjson.Result, error) {
	if baseURL == "" {
		return gjson.Result{}, &providers.TransportError{Provider: c.provider, Endpoint: endpoint, Err: errors.New("base url is not configured")}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, &providers.TransportError{Provider: c.provider, Endpoint: endpoint, Err: err}
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, baseURL+ensurePathPrefix(path), nil)
	if err != nil {
		return gjson.Result{}, &providers.TransportError{Provider: c.provider, Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	c.applyHeaders(req)

	started := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, &providers.TransportError{Provider: c.provider, Endpoint: endpoint, Err: err}
	}
	defer res.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	c.logger.Debug("upstream request", "endpoint", endpoint, "path", path, "status", res.StatusCode, "elapsed", time.Since(started).String())

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return gjson.Result{}, &providers.TransportError{Provider: c.provider, Endpoint: endpoint, StatusCode: res.StatusCode}
	}
	if readErr != nil {
		return gjson.Result{}, &providers.TransportError{Provider: c.provider, Endpoint: endpoint, Err: fmt.Errorf("read response body: %w", readErr)}
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, &providers.MalformedResponseError{Provider: c.provider, Operation: endpoint + " " + path, Reason: "body is not json"}
	}

	return gjson.ParseBytes(body), nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("User-Agent", defaultAgent)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
}

func ensurePathPrefix(rawPath string) string {
	rawPath = strings.TrimSpace(rawPath)
	if rawPath == "" {
		return ""
	}
	if strings.HasPrefix(rawPath, "/") {
		return rawPath
	}
	return "/" + rawPath
}
