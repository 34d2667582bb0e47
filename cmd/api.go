package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) bearer(cmd *cli.Command) string {
	if !cmd.Bool("auth") {
		return ""
	}
	return r.store.Current().Token()
}

// APIGet makes a direct GET request to the movie API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path, err := requireStringArg(cmd, "path")
	if err != nil {
		return err
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path, r.bearer(cmd))
	if err != nil {
		return err
	}
	return r.writeResponse(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the movie API
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path, err := requireStringArg(cmd, "path")
	if err != nil {
		return err
	}

	data := cmd.String("data")
	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if !json.Valid([]byte(data)) {
		return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.api.Post(ctx, path, r.bearer(cmd), []byte(data))
	if err != nil {
		return err
	}
	return r.writeResponse(resp, true)
}

// writeResponse prints the body and reports non-2xx statuses as errors after printing.
func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.IsJSON {
		if err := r.writeJSON(resp.JSONData, pretty); err != nil {
			return err
		}
	} else {
		r.writeBytes(resp.Body)
		r.writeBytes([]byte("\n"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrRemoteRejected, resp.StatusCode)
	}
	return nil
}
