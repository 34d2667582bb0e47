package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/server"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/urfave/cli/v3"
)

// DevStub serves the in-memory movie API until interrupted.
func (r *Runner) DevStub(ctx context.Context, cmd *cli.Command) error {
	logger := r.logger
	if path := cmd.String("log-file"); path != "" {
		fileLogger, err := shared.NewFileLogger(path)
		if err != nil {
			return err
		}
		logger = fileLogger
	}

	stub := server.NewStub(server.StubOptions{Logger: logger})
	seed := models.RegisterRequest{
		Username: cmd.String("user"),
		Password: cmd.String("password"),
		Email:    cmd.String("user") + "@example.com",
	}
	if _, err := stub.AddUser(seed); err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.writePlain("→ Serving movie API at http://%s\n", addr)
	r.writePlain("  Log in with: flix auth login -u %s -p %s\n", seed.Username, seed.Password)
	r.writePlain("  (set [api] base_url = \"http://%s\")\n", addr)

	return server.New(addr, server.NewStubRouter(stub), logger).Run(ctx)
}
