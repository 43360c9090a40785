package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel/content-resolver/internal/models"
	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gabriel/content-resolver/internal/repository"
	"github.com/gofiber/fiber/v2"
)

var errProfileNotFound = errors.New("profile not found")

// profileContextResolver picks the profile a request acts for and the resolve
// preferences stored for it.
type profileContextResolver struct {
	profiles    *repository.ProfileRepository
	preferences *repository.PreferencesRepository
	defaults    providers.Preferences
}

func newProfileContextResolver(db *sql.DB, defaults providers.Preferences) *profileContextResolver {
	return &profileContextResolver{
		profiles:    repository.NewProfileRepository(db),
		preferences: repository.NewPreferencesRepository(db),
		defaults:    defaults,
	}
}

// Resolve reads the profile key from the :profile param, then the profile
// query parameter, then the X-Profile-Key header, and falls back to the first
// profile.
func (r *profileContextResolver) Resolve(c *fiber.Ctx) (*models.Profile, error) {
	key := strings.TrimSpace(c.Params("profile"))
	if key == "" {
		key = strings.TrimSpace(c.Query("profile"))
	}
	if key == "" {
		key = strings.TrimSpace(c.Get("X-Profile-Key"))
	}

	if key != "" {
		profile, err := r.profiles.GetByKey(key)
		if err != nil {
			return nil, fmt.Errorf("lookup profile by key: %w", err)
		}
		if profile == nil {
			return nil, errProfileNotFound
		}
		return profile, nil
	}

	profile, err := r.profiles.GetDefault()
	if err != nil {
		return nil, fmt.Errorf("resolve default profile: %w", err)
	}
	if profile == nil {
		return nil, errProfileNotFound
	}
	return profile, nil
}

// Preferences returns the stored preferences for profile, or the configured
// defaults when none were saved.
func (r *profileContextResolver) Preferences(profile *models.Profile) (providers.Preferences, error) {
	if profile == nil {
		return r.defaults, nil
	}

	stored, err := r.preferences.Get(profile.ID)
	if err != nil {
		return providers.Preferences{}, err
	}
	if stored == nil {
		return r.defaults, nil
	}

	prefs := providers.Preferences{
		DefaultProvider:     r.defaults.DefaultProvider,
		AutoFallbackEnabled: stored.AutoFallbackEnabled,
		PreferredLanguage:   stored.PreferredLanguage,
	}
	if provider, ok := providers.ParseProvider(stored.DefaultProvider); ok {
		prefs.DefaultProvider = provider
	}
	if prefs.PreferredLanguage == "" {
		prefs.PreferredLanguage = r.defaults.PreferredLanguage
	}
	return prefs, nil
}
