package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints the favorite movies of the current session.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.catalog.Favorites(ctx)
	if err != nil {
		return err
	}
	views := models.Project(movies, r.store.Current())

	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}
	if len(views) == 0 {
		return r.writePlain("No favorites yet. Add one with 'flix favorites toggle <movie>'.\n")
	}

	data, err := formatter.ViewsToText(views)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// FavoritesToggle flips one movie's favorite state.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireStringArg(cmd, "movie")
	if err != nil {
		return err
	}

	id := r.resolveID(ctx, ref)
	res, err := r.favorites.Toggle(ctx, id)
	if err != nil {
		return err
	}
	return r.writeResult(res)
}

// FavoritesAdd makes every argument a favorite.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	return r.ensureFavorites(ctx, cmd, true)
}

// FavoritesRemove removes every argument from the favorites.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	return r.ensureFavorites(ctx, cmd, false)
}

func (r *Runner) ensureFavorites(ctx context.Context, cmd *cli.Command, want bool) error {
	refs := cmd.Args().Slice()
	if len(refs) == 0 {
		return fmt.Errorf("%w: at least one <movie>", shared.ErrMissingArgument)
	}

	if len(refs) == 1 {
		res, err := r.favorites.Ensure(ctx, r.resolveID(ctx, refs[0]), want)
		if err != nil {
			return err
		}
		return r.writeResult(res)
	}

	ids := r.catalog.ResolveIDs(ctx, refs)
	progress := make(chan tasks.ProgressUpdate, len(ids))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if res, ok := update.Data.(*tasks.FavoriteResult); ok {
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, r.describe(res))
			}
		}
	}()

	result, err := r.favorites.Batch(ctx, progress, ids, want, int(cmd.Int("workers")))
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("%d changed, %d unchanged, %d failed", result.Changed, result.Unchanged, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%w: %d of %d favorites could not be updated", shared.ErrRemoteRejected, result.Failed, result.Total)
	}
	return nil
}

// FavoritesRefresh replaces the local favorites with the server's.
func (r *Runner) FavoritesRefresh(ctx context.Context, cmd *cli.Command) error {
	before := r.store.Current().FavoriteSet()

	s, err := r.favorites.Refresh(ctx)
	if err != nil {
		return err
	}

	if s.FavoriteSet().Equal(before) {
		return r.writePlain("✓ Favorites already up to date (%d)\n", len(s.Favorites()))
	}
	return r.writePlain("✓ Favorites refreshed: %d → %d\n", before.Len(), len(s.Favorites()))
}

// FavoritesExport writes the favorite movies to a file.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.catalog.Movies(ctx)
	if err != nil {
		return err
	}

	export := formatter.NewFavoritesExport(r.store.Current(), movies)
	path, err := formatter.WriteExport(export, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Infof("favorites exported to %v with %v movies", path, len(export.Movies))
	r.writePlain("✓ Favorites exported to %s\n", path)
	return r.writePlain("  Movies: %d\n", len(export.Movies))
}

// resolveID maps a title to an id. Unknown references are used as ids.
func (r *Runner) resolveID(ctx context.Context, ref string) string {
	return r.catalog.ResolveIDs(ctx, []string{ref})[0]
}

func (r *Runner) describe(res *tasks.FavoriteResult) string {
	title := r.catalog.Title(res.MovieID)
	switch {
	case res.Err != nil:
		return fmt.Sprintf("✗ %s: %v", title, res.Err)
	case !res.Changed && res.Direction == tasks.Add:
		return fmt.Sprintf("· %s is already a favorite", title)
	case !res.Changed:
		return fmt.Sprintf("· %s is not a favorite", title)
	case res.Direction == tasks.Add:
		return fmt.Sprintf("★ Added %s to favorites", title)
	default:
		return fmt.Sprintf("☆ Removed %s from favorites", title)
	}
}

func (r *Runner) writeResult(res *tasks.FavoriteResult) error {
	if err := r.writePlain("%s\n", r.describe(res)); err != nil {
		return err
	}
	if res.Changed && res.Session == nil {
		r.writePlain("⚠ Session changed while the request was in flight; local favorites were not updated.\n")
	}
	return nil
}
