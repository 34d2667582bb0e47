// Package storage defines the key/value port used to persist the session
// mirror, plus in-memory and JSON-file implementations.
//
// The SQLite implementation lives in the repositories package.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/flix/internal/repositories"
	"github.com/desertthunder/flix/internal/shared"
)

const (
	UserKey  = "user"
	TokenKey = "token"
)

// Storage persists string values under string keys. Each key is overwritten wholesale.
type Storage interface {
	// Load returns the stored value and whether the key was present.
	Load(key string) (string, bool, error)
	Save(key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error
}

// Open builds the backend selected by cfg.Driver.
// The returned close func releases any underlying resources and is never nil.
func Open(cfg *shared.Config) (Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case shared.StorageMemory:
		return NewMemory(), noop, nil
	case shared.StorageFile:
		return NewFile(shared.ExpandPath(cfg.Storage.Path)), noop, nil
	case shared.StorageSQLite, "":
		db, err := shared.OpenDatabase(cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %w", shared.ErrStorage, err)
		}
		return repositories.NewKeyValueRepository(db), closeDB(db), nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Storage.Driver)
	}
}

func closeDB(db *sql.DB) func() error {
	return func() error { return db.Close() }
}
