package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/repositories"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/storage"
	"github.com/desertthunder/flix/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	storage    storage.Storage
	store      *session.Store
	api        *services.MovieAPI
	movieCache *repositories.MovieRepository
	favorites  *tasks.FavoritesSync
	accounts   *tasks.Accounts
	catalog    *tasks.Catalog
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Storage    storage.Storage // defaults to an in-memory store
	API        *services.MovieAPI
	MovieCache *repositories.MovieRepository // optional
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// The session store is built over opts.Storage and initialized before NewRunner returns.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Storage == nil {
		opts.Storage = storage.NewMemory()
	}
	if opts.API == nil {
		opts.API = services.NewMovieAPI(services.OptionsFromConfig(opts.Config.API, opts.Logger))
	}

	store := session.NewStore(opts.Storage, opts.Logger)
	store.Initialize()

	var cache tasks.MovieCache
	if opts.MovieCache != nil {
		cache = opts.MovieCache
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		storage:    opts.Storage,
		store:      store,
		api:        opts.API,
		movieCache: opts.MovieCache,
		favorites:  tasks.NewFavoritesSync(store, opts.API, opts.Logger),
		accounts:   tasks.NewAccounts(store, opts.API, opts.Logger),
		catalog:    tasks.NewCatalog(store, opts.API, cache, opts.Logger),
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, favoritesCommand, profileCommand, cacheCommand, apiCommand, devCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command. A fresh tree is built per call so flag state never leaks between runs.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:     "flix",
		Usage:    "Browse the movie catalog and manage your favorites",
		Version:  "0.3.0",
		Commands: r.register(),
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
