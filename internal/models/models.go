package models

import "time"

type Profile struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResolutionPreferences is the stored form of a profile's resolve settings.
type ResolutionPreferences struct {
	ProfileID           int64     `json:"profileId"`
	DefaultProvider     string    `json:"defaultProvider"`
	AutoFallbackEnabled bool      `json:"autoFallbackEnabled"`
	PreferredLanguage   string    `json:"preferredLanguage"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// ProviderStatus is the last health check result recorded for a provider.
// ChangedAt moves only when Healthy flips.
type ProviderStatus struct {
	Provider  string    `json:"provider"`
	Healthy   bool      `json:"healthy"`
	LastError *string   `json:"lastError,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
	ChangedAt time.Time `json:"changedAt"`
}
