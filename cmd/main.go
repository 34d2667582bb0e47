package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/flix/internal/repositories"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/storage"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("FLIX_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	backend, closeStorage, err := storage.Open(config)
	if err != nil {
		logger.Fatalf("failed to open session storage: %v", err)
	}

	var movieCache *repositories.MovieRepository
	if kv, ok := backend.(*repositories.KeyValueRepository); ok {
		movieCache = repositories.NewMovieRepository(kv.DB())
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Storage:    backend,
		API:        services.NewMovieAPI(services.OptionsFromConfig(config.API, logger)),
		MovieCache: movieCache,
		Logger:     logger,
	})

	err = runner.app().Run(context.Background(), os.Args)
	if cerr := closeStorage(); cerr != nil {
		logger.Warn("failed to close storage", "error", cerr)
	}

	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrNoSession), errors.Is(err, shared.ErrMissingCredential):
			logger.Fatalf("%v (run 'flix auth login')", err)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
