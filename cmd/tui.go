package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.store.Current() == nil {
		return fmt.Errorf("%w: log in before starting the TUI", shared.ErrNoSession)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logFile, err := shared.OpenLogFile(shared.ExpandPath(r.config.Log.File))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()
	r.logger.SetOutput(logFile)
	defer r.logger.SetOutput(os.Stderr)

	model := ui.NewModel(ctx, r.store, r.catalog, r.favorites, r.logger)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
