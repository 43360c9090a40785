package providerconfig

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel/content-resolver/internal/providers"
)

// Settings is one provider's endpoint configuration, read from a YAML file.
type Settings struct {
	Key               string            `yaml:"key"`
	Enabled           *bool             `yaml:"enabled"`
	PrimaryURL        string            `yaml:"primary_url"`
	MirrorURL         string            `yaml:"mirror_url"`
	TimeoutSeconds    int               `yaml:"timeout_seconds"`
	RequestsPerSecond float64           `yaml:"requests_per_second"`
	Burst             int               `yaml:"burst"`
	Headers           map[string]string `yaml:"headers"`
	ImageHeaders      map[string]string `yaml:"image_headers"`
	SentinelImages    []string          `yaml:"sentinel_images"`
	Path              string            `yaml:"path"`
	Language          string            `yaml:"language"`

	Provider providers.Provider `yaml:"-"`
}

func (s *Settings) normalizeAndValidate() error {
	provider, ok := providers.ParseProvider(s.Key)
	if !ok {
		return fmt.Errorf("key %q is not one of aggregator|catalog|listing", s.Key)
	}
	s.Provider = provider
	s.Key = provider.String()

	s.PrimaryURL = strings.TrimRight(strings.TrimSpace(s.PrimaryURL), "/")
	s.MirrorURL = strings.TrimRight(strings.TrimSpace(s.MirrorURL), "/")
	if err := validateURL("primary_url", s.PrimaryURL); err != nil {
		return err
	}
	if err := validateURL("mirror_url", s.MirrorURL); err != nil {
		return err
	}

	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	if s.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	if s.Burst < 0 {
		return fmt.Errorf("burst must not be negative")
	}

	s.Path = strings.Trim(strings.TrimSpace(s.Path), "/")
	s.Language = strings.TrimSpace(s.Language)

	sentinels := make([]string, 0, len(s.SentinelImages))
	for _, fragment := range s.SentinelImages {
		if trimmed := strings.TrimSpace(fragment); trimmed != "" {
			sentinels = append(sentinels, trimmed)
		}
	}
	s.SentinelImages = sentinels

	return nil
}

func (s *Settings) IsEnabled() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// Timeout is zero when unset so the transport default applies.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func validateURL(field string, raw string) error {
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s %q must be an absolute url", field, raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s %q must use http or https", field, raw)
	}
	return nil
}
