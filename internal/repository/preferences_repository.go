package repository

import (
	"database/sql"
	"fmt"

	"github.com/gabriel/content-resolver/internal/models"
)

type PreferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns nil when the profile has no stored preferences.
func (r *PreferencesRepository) Get(profileID int64) (*models.ResolutionPreferences, error) {
	row := r.db.QueryRow(`
		SELECT profile_id, default_provider, auto_fallback_enabled, preferred_language, updated_at
		FROM resolution_preferences
		WHERE profile_id = ?
	`, profileID)

	var item models.ResolutionPreferences
	if err := row.Scan(&item.ProfileID, &item.DefaultProvider, &item.AutoFallbackEnabled, &item.PreferredLanguage, &item.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get resolution preferences: %w", err)
	}

	return &item, nil
}

func (r *PreferencesRepository) Upsert(item models.ResolutionPreferences) (*models.ResolutionPreferences, error) {
	_, err := r.db.Exec(`
		INSERT INTO resolution_preferences (profile_id, default_provider, auto_fallback_enabled, preferred_language)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			default_provider = excluded.default_provider,
			auto_fallback_enabled = excluded.auto_fallback_enabled,
			preferred_language = excluded.preferred_language,
			updated_at = CURRENT_TIMESTAMP
	`, item.ProfileID, item.DefaultProvider, item.AutoFallbackEnabled, item.PreferredLanguage)
	if err != nil {
		return nil, fmt.Errorf("upsert resolution preferences: %w", err)
	}

	return r.Get(item.ProfileID)
}
