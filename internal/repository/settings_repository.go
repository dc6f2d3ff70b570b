package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
)

// SettingsRepository provides data access methods for the system_setting table.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new repository instance.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a setting value by key. Returns ErrSettingNotFound when the
// key has never been set.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM system_setting WHERE "key" = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query system_setting: %w", err)
	}
	return value, nil
}

// Set stores a setting value, replacing any existing value for the key.
func (r *SettingsRepository) Set(key, value string) error {
	query := `
		INSERT INTO system_setting (id, "key", value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT("key") DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	if _, err := r.db.Exec(query, uuid.NewString(), key, value, now); err != nil {
		return fmt.Errorf("failed to upsert system_setting: %w", err)
	}

	return nil
}
