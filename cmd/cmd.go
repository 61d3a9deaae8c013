// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes configuration and the history database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config file, database and run migrations",
		Flags: []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// migrateCommand manages the history database schema
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the history database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply pending migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.MigrateUp,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.MigrateRollback,
			},
		},
	}
}

// serveCommand runs the HTTP curation API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the playlist curation HTTP API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: r.Serve,
	}
}

// curateCommand creates a playlist from a mood prompt
func curateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "curate",
		Aliases: []string{"cur"},
		Usage:   "Create a Plex playlist from a mood prompt",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "prompt",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "LLM model to use for selection",
			},
			&cli.IntFlag{
				Name:  "min-tracks",
				Usage: "Minimum number of tracks to request",
				Value: 30,
			},
			&cli.IntFlag{
				Name:  "max-tracks",
				Usage: "Maximum number of tracks to request",
				Value: 50,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format for the track list (csv, markdown, txt)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the exported track list to a file",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Curate,
	}
}

// artistsCommand lists the cached artist catalog
func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "List artists in the music library cache",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Artists,
	}
}

// cacheCommand inspects and refreshes the artist cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and refresh the artist cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show library statistics",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheStats,
			},
			{
				Name:   "refresh",
				Usage:  "Refresh the artist cache if the library changed",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheRefresh,
			},
		},
	}
}

// providersCommand lists LLM providers usable with the configured keys
func providersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List available LLM providers",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Providers,
	}
}

// historyCommand lists previously curated playlists
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "List previously curated playlists",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "model",
				Usage: "Filter by LLM model",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries to return",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand launches the interactive curation interface
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive curation interface",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "LLM model to use for selection",
			},
		},
		Action: r.TUI,
	}
}
