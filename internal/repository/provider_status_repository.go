package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gabriel/content-resolver/internal/models"
)

type ProviderStatusRepository struct {
	db *sql.DB
}

func NewProviderStatusRepository(db *sql.DB) *ProviderStatusRepository {
	return &ProviderStatusRepository{db: db}
}

func (r *ProviderStatusRepository) Get(provider string) (*models.ProviderStatus, error) {
	row := r.db.QueryRow(`
		SELECT provider, healthy, last_error, checked_at, changed_at
		FROM provider_status
		WHERE provider = ?
	`, provider)

	item, err := scanProviderStatus(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get provider status: %w", err)
	}
	return item, nil
}

// List returns stored statuses; with no keys it returns all of them.
func (r *ProviderStatusRepository) List(providerKeys ...string) ([]models.ProviderStatus, error) {
	query := `
		SELECT provider, healthy, last_error, checked_at, changed_at
		FROM provider_status
	`
	if clause := inClause("provider", len(providerKeys)); clause != "" {
		query += ` WHERE ` + clause
	}
	args := stringArgs(providerKeys)
	query += ` ORDER BY provider ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list provider status: %w", err)
	}
	defer rows.Close()

	items := make([]models.ProviderStatus, 0)
	for rows.Next() {
		item, err := scanProviderStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider status: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider status: %w", err)
	}

	return items, nil
}

// Record stores a health check result and returns the previous status, nil
// on the first check for provider.
func (r *ProviderStatusRepository) Record(provider string, healthy bool, lastError string, checkedAt time.Time) (*models.ProviderStatus, error) {
	previous, err := r.Get(provider)
	if err != nil {
		return nil, err
	}

	changedAt := checkedAt.UTC()
	if previous != nil && previous.Healthy == healthy {
		changedAt = previous.ChangedAt
	}

	var errorValue any
	if lastError != "" {
		errorValue = lastError
	}

	_, err = r.db.Exec(`
		INSERT INTO provider_status (provider, healthy, last_error, checked_at, changed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			healthy = excluded.healthy,
			last_error = excluded.last_error,
			checked_at = excluded.checked_at,
			changed_at = excluded.changed_at
	`, provider, healthy, errorValue, checkedAt.UTC(), changedAt)
	if err != nil {
		return nil, fmt.Errorf("record provider status: %w", err)
	}

	return previous, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProviderStatus(row rowScanner) (*models.ProviderStatus, error) {
	var item models.ProviderStatus
	var lastError sql.NullString
	if err := row.Scan(&item.Provider, &item.Healthy, &lastError, &item.CheckedAt, &item.ChangedAt); err != nil {
		return nil, err
	}
	if lastError.Valid && lastError.String != "" {
		value := lastError.String
		item.LastError = &value
	}
	return &item, nil
}
