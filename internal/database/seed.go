package database

import (
	"database/sql"
	"fmt"

	"github.com/gabriel/content-resolver/internal/providers"
)

const (
	DefaultProfileKey  = "default"
	defaultProfileName = "Default"
)

// SeedDefaults creates the default profile and gives it prefs unless
// preferences were already stored.
func SeedDefaults(db *sql.DB, prefs providers.Preferences) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR IGNORE INTO profiles (key, name)
		VALUES (?, ?)
	`, DefaultProfileKey, defaultProfileName); err != nil {
		tx.Rollback()
		return fmt.Errorf("seed default profile: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR IGNORE INTO resolution_preferences (profile_id, default_provider, auto_fallback_enabled, preferred_language)
		SELECT id, ?, ?, ? FROM profiles WHERE key = ?
	`, prefs.DefaultProvider.String(), prefs.AutoFallbackEnabled, prefs.PreferredLanguage, DefaultProfileKey); err != nil {
		tx.Rollback()
		return fmt.Errorf("seed default preferences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
