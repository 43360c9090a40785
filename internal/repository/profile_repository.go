package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/gabriel/content-resolver/internal/models"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) List() ([]models.Profile, error) {
	rows, err := r.db.Query(`
		SELECT id, key, name, created_at, updated_at
		FROM profiles
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	items := make([]models.Profile, 0)
	for rows.Next() {
		var item models.Profile
		if err := rows.Scan(&item.ID, &item.Key, &item.Name, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return items, nil
}

func (r *ProfileRepository) GetByKey(key string) (*models.Profile, error) {
	row := r.db.QueryRow(`
		SELECT id, key, name, created_at, updated_at
		FROM profiles
		WHERE key = ?
	`, strings.TrimSpace(key))

	var item models.Profile
	if err := row.Scan(&item.ID, &item.Key, &item.Name, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by key: %w", err)
	}

	return &item, nil
}

func (r *ProfileRepository) GetDefault() (*models.Profile, error) {
	row := r.db.QueryRow(`
		SELECT id, key, name, created_at, updated_at
		FROM profiles
		ORDER BY id ASC
		LIMIT 1
	`)

	var item models.Profile
	if err := row.Scan(&item.ID, &item.Key, &item.Name, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get default profile: %w", err)
	}

	return &item, nil
}

// Ensure returns the profile with key, creating it when missing.
func (r *ProfileRepository) Ensure(key string, name string) (*models.Profile, error) {
	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return nil, fmt.Errorf("profile key is required")
	}
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		trimmedName = trimmedKey
	}

	if _, err := r.db.Exec(`
		INSERT OR IGNORE INTO profiles (key, name)
		VALUES (?, ?)
	`, trimmedKey, trimmedName); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}

	return r.GetByKey(trimmedKey)
}
