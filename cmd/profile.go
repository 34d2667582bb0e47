package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProfileShow prints the session's profile, refreshed from the server on request.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	s := r.store.Current()
	if s == nil {
		return shared.ErrNoSession
	}

	if cmd.Bool("refresh") {
		refreshed, err := r.favorites.Refresh(ctx)
		if err != nil {
			return err
		}
		s = refreshed
	}

	if cmd.Bool("json") {
		return r.writeJSON(s.User(), cmd.Bool("pretty"))
	}

	r.writePlainHeader(s.Username())
	r.writePlain("Email: %s\n", orNone(s.Email()))
	r.writePlain("Birthday: %s\n", orNone(s.Birthday()))
	r.writePlain("Favorites: %d\n", len(s.Favorites()))
	for _, id := range s.Favorites() {
		r.writePlain("  ★ %s\n", r.catalog.Title(id))
	}
	return nil
}

// ProfileEdit sends the changed profile fields.
func (r *Runner) ProfileEdit(ctx context.Context, cmd *cli.Command) error {
	update := models.ProfileUpdate{
		Password: cmd.String("password"),
		Email:    cmd.String("email"),
		Birthday: cmd.String("birthday"),
	}

	s, err := r.accounts.EditProfile(ctx, update)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Profile updated for %s\n", s.Username())
}

// ProfileDelete deletes the account after confirmation and clears the session.
func (r *Runner) ProfileDelete(ctx context.Context, cmd *cli.Command) error {
	s := r.store.Current()
	if s == nil {
		return shared.ErrNoSession
	}
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to delete %s", shared.ErrMissingArgument, s.Username())
	}

	if err := r.accounts.DeleteAccount(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Account %s deleted\n", s.Username())
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
