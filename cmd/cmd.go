// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// shuffleCommand reads a playlist, permutes it and writes the result to a new playlist.
func shuffleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shuffle",
		Usage: "Shuffle a playlist into a new, dated playlist",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "Source playlist ID (overrides shuffle.source_playlist)",
			},
			&cli.StringFlag{
				Name:  "service",
				Usage: "Remote service: youtube or spotify",
			},
			&cli.IntFlag{
				Name:    "passes",
				Aliases: []string{"p"},
				Usage:   "Number of permutation passes",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Random seed for a reproducible order (0 derives one from the clock)",
			},
			&cli.StringFlag{
				Name:  "title-prefix",
				Usage: "Destination title prefix; the date is appended",
			},
			&cli.StringFlag{
				Name:  "visibility",
				Usage: "Destination visibility: public, unlisted or private",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Entries requested per page (1-50)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Read and permute, but do not create or modify playlists",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show progress in an interactive terminal UI",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the TUI confirmation screen",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record the run in the history database",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the result as JSON",
			},
		},
		Action: r.Shuffle,
	}
}

// historyCommand lists recorded shuffle runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded shuffle runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv, markdown or json",
				Value:   "text",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to list",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Only list runs of this source playlist",
			},
		},
		Action: r.History,
	}
}

// setupCommand writes a config file and initializes the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the history database",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Setup,
	}
}
