package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gabriel/content-resolver/internal/providers"
)

func newJSONServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGetJSONUsesPrimaryWhenHealthy(t *testing.T) {
	var primaryCalls, mirrorCalls int32
	primary := newJSONServer(t, http.StatusOK, `{"ok":true}`, &primaryCalls)
	mirror := newJSONServer(t, http.StatusOK, `{"ok":false}`, &mirrorCalls)

	client := NewClient(Options{Provider: providers.ProviderAggregator, PrimaryURL: primary.URL, MirrorURL: mirror.URL})
	result, err := client.GetJSON(context.Background(), "/search")
	if err != nil {
		t.Fatalf("get json: %v", err)
	}
	if !result.Get("ok").Bool() {
		t.Fatalf("expected primary payload")
	}
	if mirrorCalls != 0 {
		t.Fatalf("expected mirror untouched, got %d calls", mirrorCalls)
	}
}

func TestGetJSONFallsBackToMirrorOnBadStatus(t *testing.T) {
	var primaryCalls, mirrorCalls int32
	primary := newJSONServer(t, http.StatusBadGateway, `upstream down`, &primaryCalls)
	mirror := newJSONServer(t, http.StatusOK, `{"source":"mirror"}`, &mirrorCalls)

	client := NewClient(Options{Provider: providers.ProviderAggregator, PrimaryURL: primary.URL, MirrorURL: mirror.URL})
	result, err := client.GetJSON(context.Background(), "search")
	if err != nil {
		t.Fatalf("get json: %v", err)
	}
	if result.Get("source").String() != "mirror" {
		t.Fatalf("expected mirror payload, got %s", result.Raw)
	}
	if primaryCalls != 1 || mirrorCalls != 1 {
		t.Fatalf("expected one call each, got primary=%d mirror=%d", primaryCalls, mirrorCalls)
	}
}

func TestGetJSONFallsBackToMirrorOnNonJSON(t *testing.T) {
	var primaryCalls, mirrorCalls int32
	primary := newJSONServer(t, http.StatusOK, `<html>maintenance</html>`, &primaryCalls)
	mirror := newJSONServer(t, http.StatusOK, `{"source":"mirror"}`, &mirrorCalls)

	client := NewClient(Options{Provider: providers.ProviderAggregator, PrimaryURL: primary.URL, MirrorURL: mirror.URL})
	result, err := client.GetJSON(context.Background(), "/series/abc")
	if err != nil {
		t.Fatalf("get json: %v", err)
	}
	if result.Get("source").String() != "mirror" {
		t.Fatalf("expected mirror payload, got %s", result.Raw)
	}
}

func TestGetJSONFallsBackToMirrorOnTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	var mirrorCalls int32
	mirror := newJSONServer(t, http.StatusOK, `{"source":"mirror"}`, &mirrorCalls)

	client := NewClient(Options{
		Provider:   providers.ProviderAggregator,
		PrimaryURL: slow.URL,
		MirrorURL:  mirror.URL,
		Timeout:    100 * time.Millisecond,
	})
	result, err := client.GetJSON(context.Background(), "/search")
	if err != nil {
		t.Fatalf("get json: %v", err)
	}
	if result.Get("source").String() != "mirror" {
		t.Fatalf("expected mirror payload after timeout, got %s", result.Raw)
	}
}

func TestGetJSONReturnsTransportErrorWhenBothFail(t *testing.T) {
	var primaryCalls, mirrorCalls int32
	primary := newJSONServer(t, http.StatusInternalServerError, `{}`, &primaryCalls)
	mirror := newJSONServer(t, http.StatusServiceUnavailable, `{}`, &mirrorCalls)

	client := NewClient(Options{Provider: providers.ProviderListing, PrimaryURL: primary.URL, MirrorURL: mirror.URL})
	_, err := client.GetJSON(context.Background(), "/search/x")

	var transportErr *providers.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if transportErr.StatusCode != http.StatusServiceUnavailable || transportErr.Endpoint != "mirror" {
		t.Fatalf("expected mirror 503, got %s %d", transportErr.Endpoint, transportErr.StatusCode)
	}
	if primaryCalls != 1 || mirrorCalls != 1 {
		t.Fatalf("expected a single attempt per endpoint, got primary=%d mirror=%d", primaryCalls, mirrorCalls)
	}
}

func TestGetJSONWithoutMirrorSurfacesMalformed(t *testing.T) {
	var calls int32
	primary := newJSONServer(t, http.StatusOK, `not json`, &calls)

	client := NewClient(Options{Provider: providers.ProviderCatalog, PrimaryURL: primary.URL})
	_, err := client.GetJSON(context.Background(), "/x")
	if !providers.IsMalformed(err) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestGetJSONCancelledContextSkipsMirror(t *testing.T) {
	var mirrorCalls int32
	mirror := newJSONServer(t, http.StatusOK, `{}`, &mirrorCalls)
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer primary.Close()

	client := NewClient(Options{Provider: providers.ProviderAggregator, PrimaryURL: primary.URL, MirrorURL: mirror.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetJSON(ctx, "/search")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if mirrorCalls != 0 {
		t.Fatalf("expected mirror not to be called after cancellation, got %d", mirrorCalls)
	}
}

func TestGetJSONAppliesProviderHeaders(t *testing.T) {
	var seenReferer, seenAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenReferer = r.Header.Get("Referer")
		seenAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(Options{
		Provider:   providers.ProviderListing,
		PrimaryURL: server.URL,
		Headers:    map[string]string{"Referer": "https://listing.example/", "User-Agent": "resolver-test"},
	})
	if _, err := client.GetJSON(context.Background(), "/"); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if seenReferer != "https://listing.example/" || seenAgent != "resolver-test" {
		t.Fatalf("expected provider headers, got referer=%q agent=%q", seenReferer, seenAgent)
	}
}
