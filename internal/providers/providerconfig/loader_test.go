package providerconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gabriel/content-resolver/internal/providers"
)

func writeFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "aggregator.yaml", `
key: Aggregator
primary_url: https://agg.example/
mirror_url: https://agg-mirror.example
timeout_seconds: 12
requests_per_second: 2.5
burst: 3
headers:
  Referer: https://agg.example/
sentinel_images:
  - no-more-chapter
  - "  "
`)
	writeFile(t, tmpDir, "catalog.yml", `
key: catalog
enabled: false
primary_url: https://catalog.example
`)
	writeFile(t, tmpDir, "notes.txt", `key: listing`)

	loaded, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("load settings dir: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(loaded))
	}
	if catalog := loaded[providers.ProviderCatalog]; catalog.IsEnabled() {
		t.Fatalf("expected catalog to be disabled")
	}

	settings, ok := loaded[providers.ProviderAggregator]
	if !ok {
		t.Fatalf("expected aggregator settings")
	}
	if settings.PrimaryURL != "https://agg.example" {
		t.Fatalf("expected trailing slash trimmed, got %q", settings.PrimaryURL)
	}
	if settings.Timeout() != 12*time.Second || settings.RequestsPerSecond != 2.5 || settings.Burst != 3 {
		t.Fatalf("unexpected pacing settings %+v", settings)
	}
	if len(settings.SentinelImages) != 1 {
		t.Fatalf("expected blank sentinel to be dropped, got %v", settings.SentinelImages)
	}
	if settings.Headers["Referer"] != "https://agg.example/" {
		t.Fatalf("expected headers to be read, got %v", settings.Headers)
	}
}

func TestLoadFromDirReportsInvalidFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, tmpDir, "a.yaml", `
key: listing
primary_url: https://listing.example
`)
	writeFile(t, tmpDir, "b.yaml", `
key: mystery
primary_url: https://mystery.example
`)
	writeFile(t, tmpDir, "c.yaml", `
key: catalog
primary_url: ftp://catalog.example
`)
	writeFile(t, tmpDir, "d.yaml", `
key: listing
primary_url: https://listing-two.example
`)

	loaded, err := LoadFromDir(tmpDir)
	if err == nil {
		t.Fatalf("expected an aggregated error")
	}
	for _, name := range []string{"b.yaml", "c.yaml", "d.yaml"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected error to mention %s, got %v", name, err)
		}
	}
	if len(loaded) != 1 || loaded[providers.ProviderListing].PrimaryURL != "https://listing.example" {
		t.Fatalf("expected the first listing file to survive, got %+v", loaded)
	}
}

func TestLoadFromDirMissingDirectory(t *testing.T) {
	loaded, err := LoadFromDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("expected missing dir to be ignored, got %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected no settings, got %d", len(loaded))
	}
}
