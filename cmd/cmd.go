// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/flix/internal/formatter"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	configFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		}
	}

	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and local database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a default config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles login, registration and logout
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in, register and manage the local session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in and store the session locally",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (defaults to $FLIX_PASSWORD)",
					},
				}, jsonFlags()...),
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and log in",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password (defaults to $FLIX_PASSWORD)",
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "birthday",
						Usage: "Birthday (YYYY-MM-DD)",
					},
				}, jsonFlags()...),
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the local session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all movies, favorites marked with ★",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: txt, markdown or csv",
						Value:   formatter.FormatText,
					},
				}, jsonFlags()...),
				Action: r.MoviesList,
			},
			{
				Name:  "show",
				Usage: "Show one movie by title",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "title",
					},
				},
				Flags:  jsonFlags(),
				Action: r.MoviesShow,
			},
			{
				Name:  "director",
				Usage: "Show director details",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags:  jsonFlags(),
				Action: r.MoviesDirector,
			},
			{
				Name:  "genre",
				Usage: "Show genre details",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags:  jsonFlags(),
				Action: r.MoviesGenre,
			},
			{
				Name:  "poster",
				Usage: "Download a movie poster",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "movie",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Directory to save the poster in",
						Value:   ".",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the poster after downloading",
					},
				},
				Action: r.MoviesPoster,
			},
		},
	}
}

// favoritesCommand handles favorite toggles, batches and exports
func favoritesCommand(r *Runner) *cli.Command {
	batchFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent requests for more than one movie",
				Value: 4,
			},
		}
	}

	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite movies",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorite movies",
				Flags:  jsonFlags(),
				Action: r.FavoritesList,
			},
			{
				Name:  "toggle",
				Usage: "Add a movie to favorites, or remove it if it is already there",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "movie",
					},
				},
				Action: r.FavoritesToggle,
			},
			{
				Name:      "add",
				Usage:     "Add movies (ids or titles) to favorites",
				ArgsUsage: "<movie>...",
				Flags:     batchFlags(),
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove movies (ids or titles) from favorites",
				ArgsUsage: "<movie>...",
				Flags:     batchFlags(),
				Action:    r.FavoritesRemove,
			},
			{
				Name:   "refresh",
				Usage:  "Replace local favorites with the server's copy",
				Action: r.FavoritesRefresh,
			},
			{
				Name:  "export",
				Usage: "Export favorite movies to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown or txt",
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.FavoritesExport,
			},
		},
	}
}

// profileCommand handles the account profile
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View and edit your profile",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the profile",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Fetch the profile from the server first",
					},
				}, jsonFlags()...),
				Action: r.ProfileShow,
			},
			{
				Name:  "edit",
				Usage: "Update email, birthday or password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "email",
						Usage: "New email address",
					},
					&cli.StringFlag{
						Name:  "birthday",
						Usage: "New birthday (YYYY-MM-DD)",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "New password",
					},
				},
				Action: r.ProfileEdit,
			},
			{
				Name:  "delete",
				Usage: "Delete the account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm deletion",
					},
				},
				Action: r.ProfileDelete,
			},
		},
	}
}

// cacheCommand handles the local movie cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local movie cache",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show cached movie count and session timestamps",
				Action: r.CacheStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Reload the movie cache from the server",
				Action: r.CacheRefresh,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached movies",
				Action: r.CacheClear,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	authFlag := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "auth",
			Usage: "Send the session's bearer token",
			Value: true,
		}
	}

	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the movie API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the raw response",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					authFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					authFlag(),
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// devCommand runs local development helpers
func devCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dev",
		Usage: "Development helpers",
		Commands: []*cli.Command{
			{
				Name:  "stub",
				Usage: "Serve an in-memory movie API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to [server] host:port)",
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "Seed account username",
						Value: "demo",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Seed account password",
						Value: "demo",
					},
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "Write request logs to a file instead of stderr",
					},
				},
				Action: r.DevStub,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse movies and toggle favorites interactively",
		Action: r.TUI,
	}
}
