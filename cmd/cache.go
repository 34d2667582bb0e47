package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/storage"
	"github.com/urfave/cli/v3"
)

// timestamped is implemented by storage backends that record write times.
type timestamped interface {
	UpdatedAt(key string) (time.Time, error)
}

func (r *Runner) requireCache() error {
	if r.movieCache == nil {
		return fmt.Errorf("%w: the movie cache needs storage.driver = %q", shared.ErrInvalidConfig, shared.StorageSQLite)
	}
	return nil
}

// CacheStatus prints the cached movie count and when the session slots were last written.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCache(); err != nil {
		return err
	}

	count, err := r.movieCache.Count()
	if err != nil {
		return fmt.Errorf("failed to count cached movies: %w", err)
	}

	r.writePlainHeader("Local cache")
	r.writePlain("Movies: %d\n", count)

	if ts, ok := r.storage.(timestamped); ok {
		for _, key := range []string{storage.UserKey, storage.TokenKey} {
			at, err := ts.UpdatedAt(key)
			if err != nil {
				r.writePlain("Session %s: not stored\n", key)
				continue
			}
			r.writePlain("Session %s: written %s\n", key, at.Local().Format(time.DateTime))
		}
	}
	return nil
}

// CacheRefresh reloads the movie listing, which rewrites the cache.
func (r *Runner) CacheRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCache(); err != nil {
		return err
	}

	movies, err := r.catalog.Movies(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Cached %d movies\n", len(movies))
}

// CacheClear removes every cached movie.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCache(); err != nil {
		return err
	}

	if err := r.movieCache.ReplaceAll(nil); err != nil {
		return fmt.Errorf("failed to clear movie cache: %w", err)
	}
	return r.writePlain("✓ Movie cache cleared\n")
}
