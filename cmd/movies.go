package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/urfave/cli/v3"
)

func requireStringArg(cmd *cli.Command, name string) (string, error) {
	value := cmd.StringArg(name)
	if value == "" {
		return "", fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	return value, nil
}

// MoviesList prints the catalog projected against the current session.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	views, err := r.catalog.Views(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	var data []byte
	switch format := cmd.String("format"); format {
	case formatter.FormatCSV:
		data, err = formatter.ViewsToCSV(views)
	case formatter.FormatMarkdown:
		data, err = formatter.ViewsToMarkdown("Movies", views)
	case formatter.FormatText, "":
		data, err = formatter.ViewsToText(views)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// MoviesShow prints one movie fetched by title.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	title, err := requireStringArg(cmd, "title")
	if err != nil {
		return err
	}

	movie, err := r.catalog.Movie(ctx, title)
	if err != nil {
		return err
	}
	view := models.Project([]models.Movie{*movie}, r.store.Current())[0]

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.MovieDetail(view))
}

// MoviesDirector prints director details.
func (r *Runner) MoviesDirector(ctx context.Context, cmd *cli.Command) error {
	name, err := requireStringArg(cmd, "name")
	if err != nil {
		return err
	}

	director, err := r.catalog.Director(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(director, cmd.Bool("pretty"))
	}

	r.writePlainHeader(director.Name)
	if director.Birth != "" {
		r.writePlain("Born: %s\n", director.Birth)
	}
	if director.Death != "" {
		r.writePlain("Died: %s\n", director.Death)
	}
	if director.Bio != "" {
		r.writePlain("\n%s\n", director.Bio)
	}
	return nil
}

// MoviesGenre prints genre details.
func (r *Runner) MoviesGenre(ctx context.Context, cmd *cli.Command) error {
	name, err := requireStringArg(cmd, "name")
	if err != nil {
		return err
	}

	genre, err := r.catalog.Genre(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(genre, cmd.Bool("pretty"))
	}

	r.writePlainHeader(genre.Name)
	if genre.Description != "" {
		r.writePlain("%s\n", genre.Description)
	}
	return nil
}

// MoviesPoster downloads a poster, optionally opening it.
func (r *Runner) MoviesPoster(ctx context.Context, cmd *cli.Command) error {
	ref, err := requireStringArg(cmd, "movie")
	if err != nil {
		return err
	}

	movie, err := r.catalog.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if movie.ImagePath == "" {
		return fmt.Errorf("%w: %s has no poster", shared.ErrInvalidInput, movie.Title)
	}

	r.logger.Info("downloading poster", "movie", movie.Title, "url", movie.ImagePath)
	path, err := formatter.WritePoster(*movie, cmd.String("dir"))
	if err != nil {
		return err
	}
	r.writePlain("✓ Poster saved to %s\n", path)

	if cmd.Bool("open") {
		if err := shared.OpenExternal(path); err != nil {
			r.logger.Warnf("failed to open poster %v", err)
			r.writePlainln("⚠ Could not open the poster automatically.")
		}
	}
	return nil
}
