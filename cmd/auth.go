package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/urfave/cli/v3"
)

func password(cmd *cli.Command) (string, error) {
	if p := cmd.String("password"); p != "" {
		return p, nil
	}
	if p := os.Getenv("FLIX_PASSWORD"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("%w: --password or $FLIX_PASSWORD is required", shared.ErrMissingArgument)
}

// AuthLogin logs in and publishes the new session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	pw, err := password(cmd)
	if err != nil {
		return err
	}

	creds := models.Credentials{Username: cmd.String("username"), Password: pw}
	r.logger.Info("logging in", "username", creds.Username, "api", r.api.BaseURL())

	s, err := r.accounts.Login(ctx, creds)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(s.User(), cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Logged in as %s (%d favorites)\n", s.Username(), len(s.Favorites()))
}

// AuthRegister creates an account, then logs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	pw, err := password(cmd)
	if err != nil {
		return err
	}

	req := models.RegisterRequest{
		Username: cmd.String("username"),
		Password: pw,
		Email:    cmd.String("email"),
		Birthday: cmd.String("birthday"),
	}
	r.logger.Info("registering", "username", req.Username)

	s, err := r.accounts.Register(ctx, req)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(s.User(), cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Registered and logged in as %s\n", s.Username())
}

// AuthLogout clears the session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	current := r.store.Current()
	if err := r.accounts.Logout(); err != nil {
		return err
	}

	if current == nil {
		return r.writePlain("Not logged in\n")
	}
	return r.writePlain("✓ Logged out %s\n", current.Username())
}

// AuthStatus prints the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	s := r.store.Current()

	if cmd.Bool("json") {
		status := map[string]any{"logged_in": s != nil, "api": r.api.BaseURL()}
		if s != nil {
			status["user"] = s.User()
		}
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if s == nil {
		r.writePlain("✗ Not logged in\n")
		return r.writePlain("API: %s\n", r.api.BaseURL())
	}

	r.writePlain("✓ Logged in as %s\n", s.Username())
	if s.Email() != "" {
		r.writePlain("Email: %s\n", s.Email())
	}
	if s.Birthday() != "" {
		r.writePlain("Birthday: %s\n", s.Birthday())
	}
	r.writePlain("Favorites: %d\n", len(s.Favorites()))
	return r.writePlain("API: %s\n", r.api.BaseURL())
}
