package database

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gabriel/content-resolver/internal/providers"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, currentFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "app.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(db, migrationsDir(t)); err != nil {
			t.Fatalf("apply migrations pass %d: %v", i+1, err)
		}
	}

	var recorded int
	if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&recorded); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	files, _ := migrationFiles(migrationsDir(t))
	if recorded != len(files) {
		t.Fatalf("expected %d recorded migrations, got %d", len(files), recorded)
	}
}

func TestApplyMigrationsRollsBackBrokenFile(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "0001_broken.sql"), []byte(`CREATE TABLE ok_table (id INTEGER); NOT SQL;`), 0o644); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	if err := ApplyMigrations(db, dir); err == nil {
		t.Fatalf("expected broken migration to fail")
	}

	applied, err := migrationApplied(db, "0001_broken.sql")
	if err != nil {
		t.Fatalf("check applied: %v", err)
	}
	if applied {
		t.Fatalf("expected broken migration not to be recorded")
	}
}

func TestSeedDefaultsKeepsStoredPreferences(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.sqlite"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := ApplyMigrations(db, migrationsDir(t)); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	first := providers.Preferences{DefaultProvider: providers.ProviderCatalog, AutoFallbackEnabled: true, PreferredLanguage: "en"}
	if err := SeedDefaults(db, first); err != nil {
		t.Fatalf("seed: %v", err)
	}
	second := providers.Preferences{DefaultProvider: providers.ProviderListing, PreferredLanguage: "es"}
	if err := SeedDefaults(db, second); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	var provider string
	var language string
	if err := db.QueryRow(`
		SELECT rp.default_provider, rp.preferred_language
		FROM resolution_preferences rp
		JOIN profiles p ON p.id = rp.profile_id
		WHERE p.key = ?
	`, DefaultProfileKey).Scan(&provider, &language); err != nil {
		t.Fatalf("load seeded preferences: %v", err)
	}
	if provider != "catalog" || language != "en" {
		t.Fatalf("expected first seed to win, got %s/%s", provider, language)
	}
}
