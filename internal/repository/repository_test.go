package repository_test

import (
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gabriel/content-resolver/internal/database"
	"github.com/gabriel/content-resolver/internal/models"
	"github.com/gabriel/content-resolver/internal/providers"
	"github.com/gabriel/content-resolver/internal/repository"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsPath := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := database.ApplyMigrations(db, migrationsPath); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := database.SeedDefaults(db, providers.Preferences{
		DefaultProvider:     providers.ProviderAggregator,
		AutoFallbackEnabled: true,
		PreferredLanguage:   "en",
	}); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}
	return db
}

func TestSeedCreatesDefaultProfileWithPreferences(t *testing.T) {
	db := setupDB(t)
	profiles := repository.NewProfileRepository(db)
	prefs := repository.NewPreferencesRepository(db)

	profile, err := profiles.GetDefault()
	if err != nil || profile == nil {
		t.Fatalf("expected default profile, got %v %v", profile, err)
	}
	if profile.Key != database.DefaultProfileKey {
		t.Fatalf("expected default key, got %q", profile.Key)
	}

	stored, err := prefs.Get(profile.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected seeded preferences, got %v %v", stored, err)
	}
	if stored.DefaultProvider != "aggregator" || !stored.AutoFallbackEnabled || stored.PreferredLanguage != "en" {
		t.Fatalf("unexpected seeded preferences %+v", stored)
	}

	if err := database.SeedDefaults(db, providers.Preferences{DefaultProvider: providers.ProviderListing}); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	again, err := prefs.Get(profile.ID)
	if err != nil {
		t.Fatalf("get preferences: %v", err)
	}
	if again.DefaultProvider != "aggregator" {
		t.Fatalf("expected reseed to keep stored preferences, got %q", again.DefaultProvider)
	}
}

func TestPreferencesUpsert(t *testing.T) {
	db := setupDB(t)
	profiles := repository.NewProfileRepository(db)
	prefs := repository.NewPreferencesRepository(db)

	profile, err := profiles.Ensure("reader", "")
	if err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	if profile.Name != "reader" {
		t.Fatalf("expected name to default to key, got %q", profile.Name)
	}

	missing, err := prefs.Get(profile.ID)
	if err != nil || missing != nil {
		t.Fatalf("expected no preferences yet, got %v %v", missing, err)
	}

	saved, err := prefs.Upsert(models.ResolutionPreferences{ProfileID: profile.ID, DefaultProvider: "catalog", AutoFallbackEnabled: false, PreferredLanguage: "ja"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if saved.DefaultProvider != "catalog" || saved.AutoFallbackEnabled || saved.PreferredLanguage != "ja" {
		t.Fatalf("unexpected saved preferences %+v", saved)
	}

	updated, err := prefs.Upsert(models.ResolutionPreferences{ProfileID: profile.ID, DefaultProvider: "listing", AutoFallbackEnabled: true, PreferredLanguage: "en"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.DefaultProvider != "listing" || !updated.AutoFallbackEnabled {
		t.Fatalf("expected update in place, got %+v", updated)
	}

	list, err := profiles.List()
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected default and reader profiles, got %d", len(list))
	}
}

func TestProviderStatusRecordTracksFlips(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewProviderStatusRepository(db)

	first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	previous, err := repo.Record("catalog", true, "", first)
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	if previous != nil {
		t.Fatalf("expected no previous status, got %+v", previous)
	}

	second := first.Add(10 * time.Minute)
	previous, err = repo.Record("catalog", true, "", second)
	if err != nil {
		t.Fatalf("record second: %v", err)
	}
	if previous == nil || !previous.Healthy {
		t.Fatalf("expected previous healthy status, got %+v", previous)
	}

	stored, err := repo.Get("catalog")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if !stored.ChangedAt.Equal(first) || !stored.CheckedAt.Equal(second) {
		t.Fatalf("expected changedAt to stay at first check, got changed=%v checked=%v", stored.ChangedAt, stored.CheckedAt)
	}

	third := second.Add(10 * time.Minute)
	if _, err := repo.Record("catalog", false, "catalog: primary returned status 502", third); err != nil {
		t.Fatalf("record third: %v", err)
	}
	stored, err = repo.Get("catalog")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if stored.Healthy || !stored.ChangedAt.Equal(third) || stored.LastError == nil {
		t.Fatalf("expected flip to unhealthy with error, got %+v", stored)
	}

	if _, err := repo.Record("listing", true, "", third); err != nil {
		t.Fatalf("record listing: %v", err)
	}
	all, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Provider != "catalog" {
		t.Fatalf("unexpected statuses %+v", all)
	}
	filtered, err := repo.List("listing", "aggregator")
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Provider != "listing" {
		t.Fatalf("unexpected filtered statuses %+v", filtered)
	}
}
