package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KeyValueRepository stores string slots in the storage table.
//
// It satisfies storage.Storage. Save is an upsert, so each key is overwritten wholesale.
type KeyValueRepository struct {
	db *sql.DB
}

// NewKeyValueRepository creates a new KeyValueRepository with the given database connection
func NewKeyValueRepository(db *sql.DB) *KeyValueRepository {
	return &KeyValueRepository{db: db}
}

// DB returns the underlying connection so other repositories can share it.
func (r *KeyValueRepository) DB() *sql.DB {
	return r.db
}

// Load returns the value stored under key and whether it exists.
func (r *KeyValueRepository) Load(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, true, nil
}

// Save inserts or replaces the value stored under key.
func (r *KeyValueRepository) Save(key, value string) error {
	query := `
		INSERT INTO storage (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Missing keys are ignored.
func (r *KeyValueRepository) Remove(key string) error {
	if _, err := r.db.Exec(`DELETE FROM storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// UpdatedAt reports when key was last written.
func (r *KeyValueRepository) UpdatedAt(key string) (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRow(`SELECT updated_at FROM storage WHERE key = ?`, key).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("key not found: %s", key)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return ts, nil
}
