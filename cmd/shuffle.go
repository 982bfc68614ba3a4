package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/ytshuffle/internal/formatter"
	"github.com/desertthunder/ytshuffle/internal/repositories"
	"github.com/desertthunder/ytshuffle/internal/services"
	"github.com/desertthunder/ytshuffle/internal/shared"
	"github.com/desertthunder/ytshuffle/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Shuffle reads the source playlist, permutes it and rebuilds it as a new playlist.
func (r *Runner) Shuffle(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	settings := applyShuffleFlags(config.Shuffle, cmd)
	checked := *config
	checked.Shuffle = settings
	if err := checked.Validate(); err != nil {
		return err
	}
	if settings.SourcePlaylist == "" {
		return fmt.Errorf("%w: no source playlist; pass --source or set shuffle.source_playlist", shared.ErrMissingArgument)
	}

	visibility, err := services.ParseVisibility(settings.Visibility)
	if err != nil {
		return err
	}

	service, err := r.newService(ctx, &checked)
	if err != nil {
		return err
	}

	opts := tasks.RunOpts{
		SourceID:    settings.SourcePlaylist,
		PageSize:    settings.PageSize,
		Passes:      settings.Passes,
		Seed:        settings.Seed,
		TitlePrefix: settings.TitlePrefix,
		Description: settings.Description,
		Visibility:  visibility,
		DryRun:      cmd.Bool("dry-run"),
	}

	if cmd.Bool("tui") {
		logger, err := shared.NewFileLogger("./tmp/ytshuffle-tui.log")
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(logger)
	}

	var writer services.PlaylistWriter = service
	if opts.DryRun {
		writer = services.NewDryRunWriter(r.logger)
	}
	engine := tasks.NewShuffleEngine(service.Name(), service, writer, r.logger)

	if !cmd.Bool("no-history") {
		db, closeDB, err := r.openDatabase(checked.Database)
		if err != nil {
			r.logger.Warn("history database unavailable, run will not be recorded", "error", err)
		} else {
			defer closeDB()
			engine = engine.WithRecorder(repositories.NewRunRepository(db))
		}
	}

	var result *tasks.RunResult
	if cmd.Bool("tui") {
		result, err = r.runTUI(ctx, engine, opts, service.Name(), !cmd.Bool("yes"))
	} else {
		result, err = r.runPlain(ctx, engine, opts, !cmd.Bool("json"))
	}
	if result == nil {
		return err
	}

	if writeErr := r.writeResult(result, err, cmd.Bool("json")); writeErr != nil {
		return errors.Join(err, writeErr)
	}
	return err
}

// writeResult prints the outcome of a run, including the partial progress of a failed one.
func (r *Runner) writeResult(result *tasks.RunResult, runErr error, asJSON bool) error {
	if asJSON {
		data, err := formatter.ResultToJSON(result)
		if err != nil {
			return err
		}
		return r.writeJSON(data)
	}
	if runErr != nil {
		return r.writePlain("%s\n", formatter.ResultFailure(result))
	}
	return r.writePlain("%s\n", formatter.ResultSummary(result))
}

// runPlain runs the engine while printing progress lines to the runner's output,
// or to the debug log when echo is off.
func (r *Runner) runPlain(ctx context.Context, engine *tasks.ShuffleEngine, opts tasks.RunOpts, echo bool) (*tasks.RunResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if echo {
				r.writeProgress(update)
			} else {
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh, opts)
	close(progressCh)
	<-done

	return result, err
}

func (r *Runner) writeProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchSource:
		if update.Total > 0 {
			r.writePlain("📥 %s\n", update.Message)
		} else {
			r.logger.Debug(update.Message)
		}
	case tasks.Permute:
		if update.Step == 0 {
			r.writePlain("🔀 %s\n", update.Message)
		}
	case tasks.CreatePlaylist:
		r.writePlain("📝 %s\n", update.Message)
	case tasks.AppendItems:
		r.writePlain("   %s\n", update.Message)
	}
}

// applyShuffleFlags returns s with every explicitly set flag applied over it.
func applyShuffleFlags(s shared.ShuffleConfig, cmd *cli.Command) shared.ShuffleConfig {
	if cmd.IsSet("source") {
		s.SourcePlaylist = cmd.String("source")
	}
	if cmd.IsSet("service") {
		s.Service = cmd.String("service")
	}
	if cmd.IsSet("passes") {
		s.Passes = cmd.Int("passes")
	}
	if cmd.IsSet("seed") {
		s.Seed = cmd.Uint64("seed")
	}
	if cmd.IsSet("title-prefix") {
		s.TitlePrefix = cmd.String("title-prefix")
	}
	if cmd.IsSet("visibility") {
		s.Visibility = cmd.String("visibility")
	}
	if cmd.IsSet("page-size") {
		s.PageSize = cmd.Int("page-size")
	}
	return s
}
