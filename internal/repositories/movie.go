package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// MovieRepository caches the most recent movie listing.
//
// The cache is replaced wholesale on every successful listing and is only used
// to resolve titles to ids and to label favorites; it is never a source of truth.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// ReplaceAll swaps the cached listing for movies in one transaction.
func (r *MovieRepository) ReplaceAll(movies []models.Movie) error {
	now := time.Now()

	return inTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM movies`); err != nil {
			return fmt.Errorf("failed to clear movie cache: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO movies (id, title, payload, fetched_at) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, m := range movies {
			if m.ID == "" {
				continue
			}
			payload, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("failed to encode movie %s: %w", m.ID, err)
			}
			if _, err := stmt.Exec(m.ID, m.Title, string(payload), now); err != nil {
				return fmt.Errorf("failed to cache movie %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// List returns cached movies ordered by title.
func (r *MovieRepository) List() ([]models.Movie, error) {
	rows, err := r.db.Query(`SELECT payload FROM movies ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		m, err := decodeMovie(payload)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// Get retrieves a cached movie by id. Returns [shared.ErrMovieNotFound] when absent.
func (r *MovieRepository) Get(id string) (*models.Movie, error) {
	return r.scanOne(r.db.QueryRow(`SELECT payload FROM movies WHERE id = ?`, id), id)
}

// GetByTitle retrieves a cached movie by case-insensitive title.
func (r *MovieRepository) GetByTitle(title string) (*models.Movie, error) {
	return r.scanOne(r.db.QueryRow(`SELECT payload FROM movies WHERE title = ? COLLATE NOCASE LIMIT 1`, title), title)
}

// Count returns the number of cached movies.
func (r *MovieRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

func (r *MovieRepository) scanOne(row *sql.Row, ref string) (*models.Movie, error) {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, ref)
		}
		return nil, fmt.Errorf("failed to scan movie: %w", err)
	}
	m, err := decodeMovie(payload)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeMovie(payload string) (models.Movie, error) {
	var m models.Movie
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return m, fmt.Errorf("failed to decode cached movie: %w", err)
	}
	return m, nil
}
