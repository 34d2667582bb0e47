// package repositories provides SQLite-backed implementations of the storage port and the movie cache.
package repositories

import (
	"database/sql"
	"fmt"
)

// inTx runs fn inside a transaction, committing on success and rolling back otherwise.
func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
