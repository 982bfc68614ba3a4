package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytshuffle/internal/formatter"
	"github.com/desertthunder/ytshuffle/internal/repositories"
	"github.com/desertthunder/ytshuffle/internal/shared"
	"github.com/urfave/cli/v3"
)

// History lists recorded shuffle runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	limit := cmd.Int("limit")
	if limit < 1 {
		return fmt.Errorf("%w: --limit must be at least 1, got %d", shared.ErrInvalidArgument, limit)
	}

	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	db, closeDB, err := r.openDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer closeDB()

	criteria := map[string]any{"limit": limit}
	if source := cmd.String("source"); source != "" {
		criteria["source_playlist_id"] = source
	}

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return err
	}
	r.logger.Debug("loaded shuffle history", "runs", len(runs), "format", format)

	data, err := formatter.FormatRuns(format, runs)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}
